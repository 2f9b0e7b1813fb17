package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"finledger/internal/storage"
)

// BackupService copies the database file to and from a fixed backup path.
// Both directions require exclusive access to the live file: Backup
// checkpoints the WAL first, and Restore must only run while the
// repository is closed (the shell closes and reopens it around the call).
type BackupService struct {
	backupPath string
}

func NewBackupService(backupPath string) *BackupService {
	return &BackupService{backupPath: backupPath}
}

func (s *BackupService) BackupPath() string {
	return s.backupPath
}

// Backup overwrites any prior backup with a copy of the live database.
func (s *BackupService) Backup(ctx context.Context, repo *storage.Repository) error {
	if err := repo.Checkpoint(ctx); err != nil {
		return err
	}

	src := repo.Path()
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("live database %s: %w", src, err)
	}

	if dir := filepath.Dir(s.backupPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create backup directory: %w", err)
		}
	}

	if err := copyFile(src, s.backupPath); err != nil {
		return fmt.Errorf("backup database: %w", err)
	}

	slog.InfoContext(ctx, "Database backed up", "source", src, "destination", s.backupPath)
	return nil
}

// Restore copies the backup over the live database file. This is a full
// overwrite, no merge semantics. The caller must have closed the
// repository; a failed copy leaves the live file untouched.
func (s *BackupService) Restore(ctx context.Context, livePath string) error {
	if _, err := os.Stat(s.backupPath); err != nil {
		return fmt.Errorf("backup file %s: %w", s.backupPath, err)
	}

	// Stale WAL sidecars would shadow the restored file's contents.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(livePath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s sidecar: %w", suffix, err)
		}
	}

	// Copy to a sibling temp file and rename so a failed copy never
	// leaves a torn live database.
	tmp := livePath + ".restore.tmp"
	if err := copyFile(s.backupPath, tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("restore database: %w", err)
	}
	if err := os.Rename(tmp, livePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace live database: %w", err)
	}

	slog.InfoContext(ctx, "Database restored", "source", s.backupPath, "destination", livePath)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("sync destination: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}
	return nil
}
