package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

type (
	TransactionType string

	Date struct {
		time.Time
	}

	// Month identifies a calendar month. It is half of BudgetKey and the
	// unit the report generator works in.
	Month struct {
		Year  int
		Month time.Month
	}

	// BudgetKey is the (category, month) pair a budget limit is keyed by.
	BudgetKey struct {
		Category string
		Month    Month
	}

	// DateRange is an optional inclusive [From, To] filter. The zero value
	// means "no filter"; either bound may be open.
	DateRange struct {
		From Date
		To   Date
	}

	Transaction struct {
		ID        int64
		Username  string
		Type      TransactionType
		Amount    decimal.Decimal
		Category  string
		Date      Date
		CreatedAt time.Time
	}

	Budget struct {
		Username string
		Key      BudgetKey
		Limit    decimal.Decimal
	}

	// Session is the authenticated context returned by login. It is passed
	// explicitly to every authenticated operation; nothing is process-global.
	Session struct {
		Username   string
		LoggedInAt time.Time
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidMonth       = errors.New("invalid month, expected YYYY-MM")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidLimit       = errors.New("invalid budget limit")
	ErrInvalidDateRange   = errors.New("date range start is after end")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyUsername      = errors.New("empty username")
	ErrWeakPassword       = errors.New("password too short (min 8 characters)")
	ErrDuplicateUser      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNoData             = errors.New("no transactions or budgets for this month")
)

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

// ParseDate parses a YYYY-MM-DD string into a UTC-midnight Date.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.ParseInLocation(monthLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Month{}, ErrInvalidMonth
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m Month) Validate() error {
	if m.Year < 1 || m.Month < time.January || m.Month > time.December {
		return ErrInvalidMonth
	}
	return nil
}

// Bounds returns the half-open interval [first day of m, first day of the
// next month) for range queries.
func (m Month) Bounds() (Date, Date) {
	start := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	return Date{Time: start}, Date{Time: start.AddDate(0, 1, 0)}
}

// Contains reports whether d falls inside m.
func (m Month) Contains(d Date) bool {
	return d.Year() == m.Year && d.Time.Month() == m.Month
}

func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

func (r DateRange) Validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To.Time) {
		return ErrInvalidDateRange
	}
	return nil
}

// ValidateUsername checks the registration constraints: non-empty, at most
// 64 runes, no interior whitespace.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}
	if len([]rune(username)) > 64 {
		return errors.New("username too long (max 64 characters)")
	}
	for _, r := range username {
		if unicode.IsSpace(r) {
			return errors.New("username cannot contain whitespace")
		}
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Username) == "" {
		return ErrEmptyUsername
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Username) == "" {
		return ErrEmptyUsername
	}
	if strings.TrimSpace(b.Key.Category) == "" {
		return ErrEmptyCategory
	}
	if err := b.Key.Month.Validate(); err != nil {
		return err
	}
	if b.Limit.IsNegative() {
		return ErrInvalidLimit
	}
	return nil
}
