package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

func TestAddAndListTransactions(t *testing.T) {
	repo := openTestRepo(t)
	auth := NewAuthService(repo)
	ledger := NewLedgerService(repo)
	ctx := context.Background()
	session := registerAndLogin(t, auth, "alice", "correct horse")

	adds := []struct {
		amount, category, date string
		txType                 core.TransactionType
	}{
		{"1000", "salary", "2024-03-01", core.Income},
		{"50", "food", "2024-03-05", core.Expense},
		{"150", "food", "2024-03-10", core.Expense},
	}
	for _, a := range adds {
		date, _ := core.ParseDate(a.date)
		if _, err := ledger.AddTransaction(ctx, session, decimal.RequireFromString(a.amount), a.category, a.txType, date); err != nil {
			t.Fatalf("add %v: %v", a, err)
		}
	}

	got, err := ledger.ListTransactions(ctx, session, core.DateRange{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != len(adds) {
		t.Fatalf("expected %d transactions, got %d", len(adds), len(got))
	}
	for i, a := range adds {
		if got[i].Date.String() != a.date || got[i].Category != a.category {
			t.Errorf("position %d: got %s/%s, want %s/%s", i, got[i].Date, got[i].Category, a.date, a.category)
		}
	}
}

func TestAddTransactionValidation(t *testing.T) {
	repo := openTestRepo(t)
	auth := NewAuthService(repo)
	ledger := NewLedgerService(repo)
	ctx := context.Background()
	session := registerAndLogin(t, auth, "alice", "correct horse")

	date, _ := core.ParseDate("2024-03-05")
	cases := []struct {
		name     string
		amount   string
		category string
		txType   core.TransactionType
		date     core.Date
		want     error
	}{
		{"zero amount", "0", "food", core.Expense, date, core.ErrInvalidAmount},
		{"negative amount", "-5", "food", core.Expense, date, core.ErrInvalidAmount},
		{"bad type", "5", "food", "transfer", date, core.ErrInvalidType},
		{"empty category", "5", "  ", core.Expense, date, core.ErrEmptyCategory},
		{"zero date", "5", "food", core.Expense, core.Date{}, core.ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.AddTransaction(ctx, session, decimal.RequireFromString(tc.amount), tc.category, tc.txType, tc.date)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	// Nothing may have been persisted by the failed attempts.
	got, err := ledger.ListTransactions(ctx, session, core.DateRange{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("failed adds must not persist, found %d rows", len(got))
	}
}

func TestListTransactionsBadRange(t *testing.T) {
	repo := openTestRepo(t)
	auth := NewAuthService(repo)
	ledger := NewLedgerService(repo)
	session := registerAndLogin(t, auth, "alice", "correct horse")

	from, _ := core.ParseDate("2024-04-01")
	to, _ := core.ParseDate("2024-03-01")
	_, err := ledger.ListTransactions(context.Background(), session, core.DateRange{From: from, To: to})
	if !errors.Is(err, core.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestSetAndGetBudget(t *testing.T) {
	repo := openTestRepo(t)
	auth := NewAuthService(repo)
	ledger := NewLedgerService(repo)
	ctx := context.Background()
	session := registerAndLogin(t, auth, "alice", "correct horse")

	month := core.Month{Year: 2024, Month: time.March}

	unset, err := ledger.GetBudget(ctx, session, "food", month)
	if err != nil {
		t.Fatalf("get unset budget: %v", err)
	}
	if unset.Valid {
		t.Fatal("unset budget should be invalid (no limit)")
	}

	if err := ledger.SetBudget(ctx, session, "food", month, decimal.RequireFromString("100")); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	if err := ledger.SetBudget(ctx, session, "food", month, decimal.RequireFromString("80")); err != nil {
		t.Fatalf("overwrite budget: %v", err)
	}

	got, err := ledger.GetBudget(ctx, session, "food", month)
	if err != nil {
		t.Fatalf("get budget: %v", err)
	}
	if !got.Valid || !got.Decimal.Equal(decimal.RequireFromString("80")) {
		t.Fatalf("expected overwritten limit 80, got %+v", got)
	}

	if err := ledger.SetBudget(ctx, session, "food", month, decimal.RequireFromString("-1")); !errors.Is(err, core.ErrInvalidLimit) {
		t.Fatalf("negative limit expected ErrInvalidLimit, got %v", err)
	}
}
