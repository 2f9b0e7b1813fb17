package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finledger/internal/core"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Repository is the single accessor for the ledger database. All methods
// run exactly one statement, so a failed call never leaves partial writes.
type Repository struct {
	db   *sql.DB
	path string
}

// User is a stored account row.
type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// CategorySum is one row of the per-category, per-type monthly aggregate.
type CategorySum struct {
	Category   string
	Type       core.TransactionType
	TotalCents int64
}

// Open creates the database file (and its directory) if needed, applies
// pragmas and runs the embedded migrations.
func Open(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	// Pragmas go through the DSN so every pooled connection gets them.
	dsn := "file:" + dbPath +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, path: dbPath}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Path returns the location of the live database file.
func (r *Repository) Path() string {
	return r.path
}

// Checkpoint flushes the WAL into the main database file so a plain file
// copy sees all committed writes.
func (r *Repository) Checkpoint(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("wal checkpoint: %w", err)
	}
	return nil
}

func (r *Repository) CreateUser(ctx context.Context, username, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash) VALUES (?, ?)",
		username, passwordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("create user %s: %w", username, ErrAlreadyExists)
		}
		return fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "username", username)
	return nil
}

func (r *Repository) GetUser(ctx context.Context, username string) (User, error) {
	var (
		u         User
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT username, password_hash, created_at FROM users WHERE username = ?",
		username).Scan(&u.Username, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("get user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = parseTimestamp(createdAt)
	return u, nil
}

// CreateTransaction persists a validated transaction and returns it with
// the generated id and timestamp filled in.
func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	createdAt := time.Now().UTC().Truncate(time.Second)

	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO transactions (username, type, amount_cents, category, tx_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		t.Username, string(t.Type), core.DecimalToCents(t.Amount), t.Category,
		t.Date.String(), createdAt.Format(time.RFC3339)).Scan(&id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	t.ID = id
	t.CreatedAt = createdAt

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"username", t.Username,
		"type", string(t.Type),
		"amount_cents", core.DecimalToCents(t.Amount),
		"category", t.Category,
		"tx_date", t.Date.String())

	return t, nil
}

// ListTransactions returns the user's transactions ordered by date
// ascending, ties broken by insertion id. The range bounds are inclusive
// and each may be open.
func (r *Repository) ListTransactions(ctx context.Context, username string, rng core.DateRange) ([]core.Transaction, error) {
	query := `SELECT id, username, type, amount_cents, category, tx_date, created_at
		 FROM transactions WHERE username = ?`
	args := []any{username}

	if !rng.From.IsZero() {
		query += " AND tx_date >= ?"
		args = append(args, rng.From.String())
	}
	if !rng.To.IsZero() {
		query += " AND tx_date <= ?"
		args = append(args, rng.To.String())
	}
	query += " ORDER BY tx_date ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return transactions, nil
}

// UpsertBudget inserts or overwrites the (username, category, month) limit.
func (r *Repository) UpsertBudget(ctx context.Context, b core.Budget) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (username, category, month, limit_cents)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(username, category, month) DO UPDATE SET limit_cents = excluded.limit_cents`,
		b.Username, b.Key.Category, b.Key.Month.String(), core.DecimalToCents(b.Limit))
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget set",
		"username", b.Username,
		"category", b.Key.Category,
		"month", b.Key.Month.String(),
		"limit_cents", core.DecimalToCents(b.Limit))

	return nil
}

// GetBudget returns the limit in cents for one (username, category, month),
// or ErrNotFound when no budget is set.
func (r *Repository) GetBudget(ctx context.Context, username string, key core.BudgetKey) (int64, error) {
	var limitCents int64
	err := r.db.QueryRowContext(ctx,
		"SELECT limit_cents FROM budgets WHERE username = ? AND category = ? AND month = ?",
		username, key.Category, key.Month.String()).Scan(&limitCents)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("get budget %s/%s: %w", key.Category, key.Month, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("get budget: %w", err)
	}
	return limitCents, nil
}

// ListBudgets returns all of the user's budgets for one month.
func (r *Repository) ListBudgets(ctx context.Context, username string, month core.Month) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT category, limit_cents FROM budgets WHERE username = ? AND month = ? ORDER BY category ASC",
		username, month.String())
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var (
			category   string
			limitCents int64
		)
		if err := rows.Scan(&category, &limitCents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, core.Budget{
			Username: username,
			Key:      core.BudgetKey{Category: category, Month: month},
			Limit:    core.CentsToDecimal(limitCents),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	return budgets, nil
}

// SumByCategory aggregates the user's transactions inside one month,
// grouped by category and type.
func (r *Repository) SumByCategory(ctx context.Context, username string, month core.Month) ([]CategorySum, error) {
	start, end := month.Bounds()
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, type, SUM(amount_cents)
		 FROM transactions
		 WHERE username = ? AND tx_date >= ? AND tx_date < ?
		 GROUP BY category, type
		 ORDER BY category ASC`,
		username, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}
	defer rows.Close()

	var sums []CategorySum
	for rows.Next() {
		var (
			s      CategorySum
			txType string
		)
		if err := rows.Scan(&s.Category, &txType, &s.TotalCents); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		s.Type = core.TransactionType(txType)
		sums = append(sums, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}

	return sums, nil
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		t           core.Transaction
		txType      string
		amountCents int64
		txDate      string
		createdAt   string
	)
	if err := rows.Scan(&t.ID, &t.Username, &txType, &amountCents, &t.Category, &txDate, &createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	date, err := core.ParseDate(txDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored tx_date %q: %w", txDate, err)
	}

	t.Type = core.TransactionType(txType)
	t.Amount = core.CentsToDecimal(amountCents)
	t.Date = date
	t.CreatedAt = parseTimestamp(createdAt)
	return t, nil
}

// parseTimestamp accepts the formats SQLite hands back for timestamp
// columns: RFC3339 from our own inserts, the CURRENT_TIMESTAMP default
// otherwise. An unparseable value yields the zero time rather than an error.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
