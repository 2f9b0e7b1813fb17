package core

import "github.com/shopspring/decimal"

const (
	StatusOver       BudgetStatus = "over"
	StatusUnder      BudgetStatus = "under"
	StatusOnTrack    BudgetStatus = "on_track"
	StatusUnbudgeted BudgetStatus = "unbudgeted"
)

type (
	BudgetStatus string

	// CategoryAmount is an amount aggregated by category name.
	CategoryAmount struct {
		Category string
		Amount   decimal.Decimal
	}

	// BudgetLine compares one category's expense total against its budget
	// limit for the month. Limit and Delta are invalid when the category
	// has no budget entry.
	BudgetLine struct {
		Category string
		Spent    decimal.Decimal
		Limit    decimal.NullDecimal
		Delta    decimal.NullDecimal
		Status   BudgetStatus
	}

	// Report is the computed, non-persisted monthly summary. Expenses and
	// Income are sorted by category name ascending.
	Report struct {
		Month        Month
		TotalIncome  decimal.Decimal
		TotalExpense decimal.Decimal
		Net          decimal.Decimal
		Expenses     []BudgetLine
		Income       []CategoryAmount
	}
)

// ClassifyBudget returns the status for a category that spent the given
// amount against an optional limit.
func ClassifyBudget(spent decimal.Decimal, limit decimal.NullDecimal) BudgetStatus {
	if !limit.Valid {
		return StatusUnbudgeted
	}
	switch spent.Cmp(limit.Decimal) {
	case 1:
		return StatusOver
	case -1:
		return StatusUnder
	default:
		return StatusOnTrack
	}
}
