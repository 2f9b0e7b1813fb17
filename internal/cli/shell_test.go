package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"finledger/internal/config"
	"finledger/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DBPath:     filepath.Join(dir, "ledger.sqlite"),
		BackupPath: filepath.Join(dir, "backup", "ledger_backup.sqlite"),
		LogLevel:   "info",
	}
}

// runShell drives a scripted session: one input line per prompt, in menu
// order. It returns everything the shell printed.
func runShell(t *testing.T, cfg *config.Config, script ...string) string {
	t.Helper()

	repo, err := storage.Open(cfg.DBPath)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}

	in := strings.NewReader(strings.Join(script, "\n") + "\n")
	var out bytes.Buffer
	shell := NewShell(cfg, repo, in, &out)

	if err := shell.Run(context.Background()); err != nil {
		t.Fatalf("shell run: %v\noutput:\n%s", err, out.String())
	}
	if err := shell.Repository().Close(); err != nil {
		t.Fatalf("close repository: %v", err)
	}

	return out.String()
}

func TestShellRegisterLoginAddReport(t *testing.T) {
	cfg := testConfig(t)

	out := runShell(t, cfg,
		"1", "alice", "correct horse", // register
		"2", "alice", "correct horse", // login
		"1", "expense", "50", "food", "2024-03-05", // add transaction
		"4", "food", "2024-03", "100", // set budget
		"3", "2024-03", // monthly report
		"5", // logout
		"5", // exit
	)

	for _, want := range []string{
		"Registration successful",
		"Login successful",
		"Recorded #1: expense 50.00 on 2024-03-05 (food)",
		"Budget saved",
		"Monthly Report 2024-03",
		"under",
		"Total expense: 50.00",
		"Logged out.",
		"Bye.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\noutput:\n%s", want, out)
		}
	}
}

func TestShellViewTransactionsWithRange(t *testing.T) {
	cfg := testConfig(t)

	out := runShell(t, cfg,
		"1", "alice", "correct horse",
		"2", "alice", "correct horse",
		"1", "expense", "10", "food", "2024-03-05",
		"1", "expense", "20", "food", "2024-04-05",
		"2", "2024-03-01", "2024-03-31", // view march only
		"5",
		"5",
	)

	// Only look at output after the range prompts, the add confirmations
	// also mention the dates.
	_, listing, found := strings.Cut(out, "From date")
	if !found {
		t.Fatalf("range prompt missing:\n%s", out)
	}
	if !strings.Contains(listing, "2024-03-05") {
		t.Errorf("march transaction missing from listing:\n%s", listing)
	}
	if strings.Contains(listing, "2024-04-05") {
		t.Errorf("april transaction leaked into the filtered listing:\n%s", listing)
	}
	if !strings.Contains(listing, "1 transaction(s)") {
		t.Errorf("expected a single-row listing:\n%s", listing)
	}
}

func TestShellErrorsKeepLoopAlive(t *testing.T) {
	cfg := testConfig(t)

	out := runShell(t, cfg,
		"1", "alice", "correct horse",
		"1", "alice", "another password", // duplicate registration
		"2", "alice", "wrong password", // failed login
		"2", "alice", "correct horse",
		"1", "expense", "abc", // bad amount aborts the prompt chain
		"3", "2024-03", // report with no data
		"5",
		"5",
	)

	for _, want := range []string{
		"username already taken",
		"invalid username or password",
		"invalid amount",
		"no transactions or budgets for this month",
		"Bye.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\noutput:\n%s", want, out)
		}
	}
}

func TestShellBackupAndRestore(t *testing.T) {
	cfg := testConfig(t)

	out := runShell(t, cfg,
		"1", "alice", "correct horse",
		"2", "alice", "correct horse",
		"1", "expense", "50", "food", "2024-03-05",
		"5", // logout
		"3", // backup
		"2", "alice", "correct horse",
		"1", "expense", "999", "food", "2024-03-20", // write after backup
		"5", // logout
		"4", // restore drops the post-backup write
		"2", "alice", "correct horse",
		"2", "", "", // view all transactions
		"5",
		"5",
	)

	if !strings.Contains(out, "Backup written to") {
		t.Errorf("backup confirmation missing:\n%s", out)
	}
	_, afterRestore, found := strings.Cut(out, "Database restored from")
	if !found {
		t.Fatalf("restore confirmation missing:\n%s", out)
	}
	if !strings.Contains(afterRestore, "1 transaction(s)") {
		t.Errorf("expected restored single-transaction state:\n%s", afterRestore)
	}
	if strings.Contains(afterRestore, "999.00") {
		t.Errorf("post-backup write survived the restore:\n%s", afterRestore)
	}
}

func TestShellRestoreWithoutBackup(t *testing.T) {
	cfg := testConfig(t)

	out := runShell(t, cfg,
		"4", // restore with no backup on disk
		"5",
	)

	if !strings.Contains(out, "Error:") {
		t.Errorf("expected a rendered error:\n%s", out)
	}
	if !strings.Contains(out, "Bye.") {
		t.Errorf("loop should continue after a failed restore:\n%s", out)
	}
}

func TestShellUnknownOption(t *testing.T) {
	cfg := testConfig(t)

	out := runShell(t, cfg,
		"9",
		"5",
	)

	if !strings.Contains(out, "Unknown option") {
		t.Errorf("expected unknown-option message:\n%s", out)
	}
}

func TestShellEOFExitsCleanly(t *testing.T) {
	cfg := testConfig(t)

	repo, err := storage.Open(cfg.DBPath)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	defer repo.Close()

	var out bytes.Buffer
	shell := NewShell(cfg, repo, strings.NewReader(""), &out)
	if err := shell.Run(context.Background()); err != nil {
		t.Fatalf("EOF should exit cleanly, got %v", err)
	}
}
