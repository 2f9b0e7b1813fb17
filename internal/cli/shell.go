package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"

	"finledger/internal/config"
	"finledger/internal/core"
	"finledger/internal/services"
	"finledger/internal/storage"
)

// Shell is the interactive menu loop. It owns the repository for the
// lifetime of the run (restore closes and reopens it) and keeps at most
// one authenticated session at a time.
type Shell struct {
	cfg     *config.Config
	repo    *storage.Repository
	auth    *services.AuthService
	ledger  *services.LedgerService
	reports *services.ReportService
	backup  *services.BackupService

	in      *bufio.Reader
	out     io.Writer
	stdin   fdReader
	session *core.Session
}

// fdReader is satisfied by *os.File; it lets the shell read passwords
// without echo when the input really is a terminal.
type fdReader interface {
	Fd() uintptr
}

func NewShell(cfg *config.Config, repo *storage.Repository, in io.Reader, out io.Writer) *Shell {
	s := &Shell{
		cfg:  cfg,
		repo: repo,
		in:   bufio.NewReader(in),
		out:  out,
	}
	if f, ok := in.(fdReader); ok {
		s.stdin = f
	}
	s.bindServices()
	return s
}

func (s *Shell) bindServices() {
	s.auth = services.NewAuthService(s.repo)
	s.ledger = services.NewLedgerService(s.repo)
	s.reports = services.NewReportService(s.repo)
	s.backup = services.NewBackupService(s.cfg.BackupPath)
}

// Repository returns the currently open repository so the caller can close
// it on exit. Restore swaps it out mid-run.
func (s *Shell) Repository() *storage.Repository {
	return s.repo
}

// Run drives the menu loop until the user exits or input runs out.
// It returns an error only for unrecoverable failures; every per-operation
// error is rendered as a message and the loop continues.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, titleStyle.Render("finledger — personal finance ledger"))

	for {
		var err error
		if s.session == nil {
			err = s.anonymousMenu(ctx)
		} else {
			err = s.authenticatedMenu(ctx)
		}
		if errors.Is(err, errExit) {
			fmt.Fprintln(s.out, "Bye.")
			return nil
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

var errExit = errors.New("exit requested")

func (s *Shell) anonymousMenu(ctx context.Context) error {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, headerStyle.Render("Main Menu"))
	fmt.Fprintln(s.out, "1. Register")
	fmt.Fprintln(s.out, "2. Login")
	fmt.Fprintln(s.out, "3. Backup Database")
	fmt.Fprintln(s.out, "4. Restore Database")
	fmt.Fprintln(s.out, "5. Exit")

	choice, err := s.readLine("Select an option: ")
	if err != nil {
		return err
	}

	switch strings.TrimSpace(choice) {
	case "1":
		s.report(s.handleRegister(ctx), "Registration successful. You can log in now.")
	case "2":
		s.report(s.handleLogin(ctx), "Login successful.")
	case "3":
		s.report(s.backup.Backup(ctx, s.repo), "Backup written to "+s.backup.BackupPath())
	case "4":
		return s.handleRestore(ctx)
	case "5":
		return errExit
	default:
		fmt.Fprintln(s.out, errorStyle.Render("Unknown option, try again."))
	}
	return nil
}

func (s *Shell) authenticatedMenu(ctx context.Context) error {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, headerStyle.Render("Ledger Menu — "+s.session.Username))
	fmt.Fprintln(s.out, "1. Add Transaction")
	fmt.Fprintln(s.out, "2. View Transactions")
	fmt.Fprintln(s.out, "3. Generate Monthly Report")
	fmt.Fprintln(s.out, "4. Set Budget")
	fmt.Fprintln(s.out, "5. Logout")

	choice, err := s.readLine("Select an option: ")
	if err != nil {
		return err
	}

	switch strings.TrimSpace(choice) {
	case "1":
		s.report(s.handleAddTransaction(ctx), "Transaction recorded.")
	case "2":
		s.report(s.handleViewTransactions(ctx), "")
	case "3":
		s.report(s.handleMonthlyReport(ctx), "")
	case "4":
		s.report(s.handleSetBudget(ctx), "Budget saved.")
	case "5":
		s.session = nil
		fmt.Fprintln(s.out, "Logged out.")
	default:
		fmt.Fprintln(s.out, errorStyle.Render("Unknown option, try again."))
	}
	return nil
}

func (s *Shell) handleRegister(ctx context.Context) error {
	username, err := s.readLine("Username: ")
	if err != nil {
		return err
	}
	password, err := s.readPassword("Password (min 8 characters): ")
	if err != nil {
		return err
	}
	return s.auth.Register(ctx, username, password)
}

func (s *Shell) handleLogin(ctx context.Context) error {
	username, err := s.readLine("Username: ")
	if err != nil {
		return err
	}
	password, err := s.readPassword("Password: ")
	if err != nil {
		return err
	}
	session, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	s.session = session
	return nil
}

// handleRestore needs exclusive access to the database file, so the
// repository is closed for the duration of the copy and reopened after.
// Failing to reopen is unrecoverable for the shell.
func (s *Shell) handleRestore(ctx context.Context) error {
	if err := s.repo.Close(); err != nil {
		return fmt.Errorf("close database before restore: %w", err)
	}

	restoreErr := s.backup.Restore(ctx, s.cfg.DBPath)

	repo, err := storage.Open(s.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("reopen database after restore: %w", err)
	}
	s.repo = repo
	s.bindServices()
	s.session = nil

	s.report(restoreErr, "Database restored from "+s.backup.BackupPath())
	return nil
}

func (s *Shell) handleAddTransaction(ctx context.Context) error {
	txType, err := s.readLine("Type (income/expense): ")
	if err != nil {
		return err
	}
	amountStr, err := s.readLine("Amount: ")
	if err != nil {
		return err
	}
	amount, err := core.ParseAmount(amountStr)
	if err != nil {
		return err
	}
	category, err := s.readLine("Category: ")
	if err != nil {
		return err
	}
	dateStr, err := s.readLine("Date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return err
	}

	stored, err := s.ledger.AddTransaction(ctx, s.session, amount, category,
		core.TransactionType(strings.ToLower(strings.TrimSpace(txType))), date)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Recorded #%d: %s %s on %s (%s)\n",
		stored.ID, stored.Type, stored.Amount.StringFixed(2), stored.Date, stored.Category)
	return nil
}

func (s *Shell) handleViewTransactions(ctx context.Context) error {
	rng, err := s.readDateRange()
	if err != nil {
		return err
	}

	transactions, err := s.ledger.ListTransactions(ctx, s.session, rng)
	if err != nil {
		return err
	}
	if len(transactions) == 0 {
		fmt.Fprintln(s.out, "No transactions found.")
		return nil
	}
	fmt.Fprint(s.out, renderTransactions(transactions))
	return nil
}

// readDateRange prompts for an optional inclusive from/to filter; empty
// input leaves the corresponding bound open.
func (s *Shell) readDateRange() (core.DateRange, error) {
	var rng core.DateRange

	fromStr, err := s.readLine("From date (YYYY-MM-DD, empty for all): ")
	if err != nil {
		return rng, err
	}
	if strings.TrimSpace(fromStr) != "" {
		if rng.From, err = core.ParseDate(fromStr); err != nil {
			return rng, err
		}
	}

	toStr, err := s.readLine("To date (YYYY-MM-DD, empty for all): ")
	if err != nil {
		return rng, err
	}
	if strings.TrimSpace(toStr) != "" {
		if rng.To, err = core.ParseDate(toStr); err != nil {
			return rng, err
		}
	}

	return rng, nil
}

func (s *Shell) handleMonthlyReport(ctx context.Context) error {
	monthStr, err := s.readLine("Month (YYYY-MM): ")
	if err != nil {
		return err
	}
	month, err := core.ParseMonth(monthStr)
	if err != nil {
		return err
	}

	report, err := s.reports.MonthlyReport(ctx, s.session, month)
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, renderReport(report))
	return nil
}

func (s *Shell) handleSetBudget(ctx context.Context) error {
	category, err := s.readLine("Category: ")
	if err != nil {
		return err
	}
	monthStr, err := s.readLine("Month (YYYY-MM): ")
	if err != nil {
		return err
	}
	month, err := core.ParseMonth(monthStr)
	if err != nil {
		return err
	}
	limitStr, err := s.readLine("Monthly limit: ")
	if err != nil {
		return err
	}
	limit, err := core.ParseLimit(limitStr)
	if err != nil {
		return err
	}

	return s.ledger.SetBudget(ctx, s.session, category, month, limit)
}

// report renders an operation result: errors become one-line messages and
// the menu loop continues, successes print the given confirmation.
func (s *Shell) report(err error, success string) {
	if err != nil {
		fmt.Fprintln(s.out, errorStyle.Render("Error: "+errorMessage(err)))
		return
	}
	if success != "" {
		fmt.Fprintln(s.out, successStyle.Render(success))
	}
}

// errorMessage maps domain sentinels to their user-facing text; anything
// else (driver and I/O failures) passes through wrapped as-is.
func errorMessage(err error) string {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidDate,
		core.ErrInvalidMonth,
		core.ErrInvalidType,
		core.ErrInvalidLimit,
		core.ErrInvalidDateRange,
		core.ErrEmptyCategory,
		core.ErrEmptyUsername,
		core.ErrWeakPassword,
		core.ErrDuplicateUser,
		core.ErrInvalidCredentials,
		core.ErrNoData,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func (s *Shell) readLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(s.out, prompt)
	}
	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads without echo when stdin is a terminal, and falls back
// to a plain line read otherwise so scripted sessions keep working.
func (s *Shell) readPassword(prompt string) (string, error) {
	if s.stdin != nil && term.IsTerminal(int(s.stdin.Fd())) {
		fmt.Fprint(s.out, prompt)
		b, err := term.ReadPassword(int(s.stdin.Fd()))
		fmt.Fprintln(s.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return s.readLine(prompt)
}
