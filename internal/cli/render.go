package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"finledger/internal/core"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	columnStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	statusStyles = map[core.BudgetStatus]lipgloss.Style{
		core.StatusOver:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		core.StatusUnder:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		core.StatusOnTrack:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		core.StatusUnbudgeted: lipgloss.NewStyle().Faint(true),
	}
)

func renderTransactions(transactions []core.Transaction) string {
	var b strings.Builder

	fmt.Fprintln(&b, columnStyle.Render(fmt.Sprintf("%-6s %-8s %12s  %-20s %-12s %s",
		"ID", "TYPE", "AMOUNT", "CATEGORY", "DATE", "RECORDED")))
	for _, t := range transactions {
		recorded := ""
		if !t.CreatedAt.IsZero() {
			recorded = t.CreatedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, "%-6d %-8s %12s  %-20s %-12s %s\n",
			t.ID, t.Type, t.Amount.StringFixed(2), t.Category, t.Date.String(), recorded)
	}
	fmt.Fprintf(&b, "%d transaction(s)\n", len(transactions))

	return b.String()
}

func renderReport(r *core.Report) string {
	var b strings.Builder

	fmt.Fprintln(&b, headerStyle.Render("Monthly Report "+r.Month.String()))

	if len(r.Expenses) > 0 {
		fmt.Fprintln(&b, titleStyle.Render("Expenses vs. budget"))
		fmt.Fprintln(&b, columnStyle.Render(fmt.Sprintf("%-20s %12s %12s %12s  %s",
			"CATEGORY", "SPENT", "LIMIT", "DELTA", "STATUS")))
		for _, line := range r.Expenses {
			limit, delta := "-", "-"
			if line.Limit.Valid {
				limit = line.Limit.Decimal.StringFixed(2)
				delta = line.Delta.Decimal.StringFixed(2)
			}
			fmt.Fprintf(&b, "%-20s %12s %12s %12s  %s\n",
				line.Category, line.Spent.StringFixed(2), limit, delta,
				statusStyles[line.Status].Render(string(line.Status)))
		}
	}

	if len(r.Income) > 0 {
		fmt.Fprintln(&b, titleStyle.Render("Income"))
		for _, line := range r.Income {
			fmt.Fprintf(&b, "%-20s %12s\n", line.Category, line.Amount.StringFixed(2))
		}
	}

	fmt.Fprintf(&b, "Total income:  %s\n", r.TotalIncome.StringFixed(2))
	fmt.Fprintf(&b, "Total expense: %s\n", r.TotalExpense.StringFixed(2))
	fmt.Fprintf(&b, "Net:           %s\n", r.Net.StringFixed(2))

	return b.String()
}
