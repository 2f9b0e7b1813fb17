package services

import (
	"context"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/storage"
)

// ReportService computes the monthly budget-versus-actual summary.
// Reports are derived on every call and never persisted.
type ReportService struct {
	storage *storage.Repository
}

func NewReportService(storage *storage.Repository) *ReportService {
	return &ReportService{storage: storage}
}

// MonthlyReport aggregates the session user's transactions for one month
// and compares expense totals against the budget limits set for it.
// Income is informational only. Fails with core.ErrNoData only when the
// month has neither transactions nor budgets.
func (s *ReportService) MonthlyReport(ctx context.Context, session *core.Session, month core.Month) (*core.Report, error) {
	if err := month.Validate(); err != nil {
		return nil, err
	}

	sums, err := s.storage.SumByCategory(ctx, session.Username, month)
	if err != nil {
		return nil, err
	}
	budgets, err := s.storage.ListBudgets(ctx, session.Username, month)
	if err != nil {
		return nil, err
	}

	if len(sums) == 0 && len(budgets) == 0 {
		return nil, core.ErrNoData
	}

	spentByCategory := map[string]decimal.Decimal{}
	incomeByCategory := map[string]decimal.Decimal{}
	totalIncome := decimal.Zero
	totalExpense := decimal.Zero
	for _, sum := range sums {
		amount := core.CentsToDecimal(sum.TotalCents)
		switch sum.Type {
		case core.Expense:
			spentByCategory[sum.Category] = amount
			totalExpense = totalExpense.Add(amount)
		case core.Income:
			incomeByCategory[sum.Category] = amount
			totalIncome = totalIncome.Add(amount)
		}
	}

	limitByCategory := map[string]decimal.Decimal{}
	for _, b := range budgets {
		limitByCategory[b.Key.Category] = b.Limit
	}

	// One expense line per category with spend or a budget entry.
	categories := map[string]struct{}{}
	for c := range spentByCategory {
		categories[c] = struct{}{}
	}
	for c := range limitByCategory {
		categories[c] = struct{}{}
	}

	expenses := make([]core.BudgetLine, 0, len(categories))
	for c := range categories {
		spent := spentByCategory[c] // zero when the category only has a budget
		line := core.BudgetLine{Category: c, Spent: spent}
		if limit, ok := limitByCategory[c]; ok {
			line.Limit = decimal.NullDecimal{Decimal: limit, Valid: true}
			line.Delta = decimal.NullDecimal{Decimal: limit.Sub(spent), Valid: true}
		}
		line.Status = core.ClassifyBudget(spent, line.Limit)
		expenses = append(expenses, line)
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].Category < expenses[j].Category })

	income := make([]core.CategoryAmount, 0, len(incomeByCategory))
	for c, amount := range incomeByCategory {
		income = append(income, core.CategoryAmount{Category: c, Amount: amount})
	}
	sort.Slice(income, func(i, j int) bool { return income[i].Category < income[j].Category })

	slog.InfoContext(ctx, "Monthly report generated",
		"username", session.Username,
		"month", month.String(),
		"expense_lines", len(expenses),
		"income_lines", len(income))

	return &core.Report{
		Month:        month,
		TotalIncome:  totalIncome,
		TotalExpense: totalExpense,
		Net:          totalIncome.Sub(totalExpense),
		Expenses:     expenses,
		Income:       income,
	}, nil
}
