package config

import (
	"log/slog"
	"strings"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid defaults",
			config: Config{
				DBPath:     "finance_db.sqlite",
				BackupPath: "backup/finance_db_backup.sqlite",
				LogLevel:   "info",
			},
			wantErr: false,
		},
		{
			name: "empty db path",
			config: Config{
				DBPath:     "",
				BackupPath: "backup/finance_db_backup.sqlite",
				LogLevel:   "info",
			},
			wantErr:     true,
			errorString: "database path cannot be empty",
		},
		{
			name: "empty backup path",
			config: Config{
				DBPath:     "finance_db.sqlite",
				BackupPath: "",
				LogLevel:   "info",
			},
			wantErr:     true,
			errorString: "backup path cannot be empty",
		},
		{
			name: "backup path equals db path",
			config: Config{
				DBPath:     "finance_db.sqlite",
				BackupPath: "finance_db.sqlite",
				LogLevel:   "info",
			},
			wantErr:     true,
			errorString: "must differ from the database path",
		},
		{
			name: "invalid log level",
			config: Config{
				DBPath:     "finance_db.sqlite",
				BackupPath: "backup/finance_db_backup.sqlite",
				LogLevel:   "verbose",
			},
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"FINLEDGER_DB_PATH", "FINLEDGER_BACKUP_PATH", "FINLEDGER_LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.DBPath != "finance_db.sqlite" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.BackupPath == "" {
		t.Error("BackupPath should default to a non-empty path")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FINLEDGER_DB_PATH", "/tmp/other.sqlite")
	t.Setenv("FINLEDGER_LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.DBPath != "/tmp/other.sqlite" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		t.Fatalf("SlogLevel: %v", err)
	}
	if level != slog.LevelDebug {
		t.Errorf("level = %v", level)
	}
}
