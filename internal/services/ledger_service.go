package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/storage"
)

// LedgerService records transactions and budget limits for an
// authenticated session. The ledger is append-only; budgets are
// last-write-wins per (category, month).
type LedgerService struct {
	storage *storage.Repository
}

func NewLedgerService(storage *storage.Repository) *LedgerService {
	return &LedgerService{storage: storage}
}

// AddTransaction validates and persists one ledger entry, returning the
// stored row with its generated id and timestamp.
func (s *LedgerService) AddTransaction(ctx context.Context, session *core.Session, amount decimal.Decimal, category string, txType core.TransactionType, date core.Date) (core.Transaction, error) {
	t := core.Transaction{
		Username: session.Username,
		Type:     txType,
		Amount:   amount,
		Category: strings.TrimSpace(category),
		Date:     date,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	return s.storage.CreateTransaction(ctx, t)
}

// ListTransactions returns the session user's transactions, optionally
// bounded by an inclusive date range, ordered by date then id.
func (s *LedgerService) ListTransactions(ctx context.Context, session *core.Session, rng core.DateRange) ([]core.Transaction, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	return s.storage.ListTransactions(ctx, session.Username, rng)
}

// SetBudget creates or overwrites the limit for (category, month).
func (s *LedgerService) SetBudget(ctx context.Context, session *core.Session, category string, month core.Month, limit decimal.Decimal) error {
	b := core.Budget{
		Username: session.Username,
		Key:      core.BudgetKey{Category: strings.TrimSpace(category), Month: month},
		Limit:    limit,
	}
	if err := b.Validate(); err != nil {
		return err
	}

	return s.storage.UpsertBudget(ctx, b)
}

// GetBudget returns the limit for (category, month); an unset budget comes
// back as an invalid NullDecimal, meaning "no limit".
func (s *LedgerService) GetBudget(ctx context.Context, session *core.Session, category string, month core.Month) (decimal.NullDecimal, error) {
	cents, err := s.storage.GetBudget(ctx, session.Username, core.BudgetKey{Category: strings.TrimSpace(category), Month: month})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return decimal.NullDecimal{}, nil
		}
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: core.CentsToDecimal(cents), Valid: true}, nil
}
