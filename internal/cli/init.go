// Package cli provides the interactive menu shell and the initialization
// helpers used by cmd/finledger.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"finledger/internal/config"
	"finledger/internal/storage"
)

// SetupLogger initializes structured logging at the given level and sets
// the result as the default logger. Records go to stderr so they never
// interleave with menu output on stdout.
func SetupLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitRepository opens the ledger database at the given path.
// Returns the repository or exits the process on failure.
func InitRepository(logger *slog.Logger, dbPath string) *storage.Repository {
	repo, err := storage.Open(dbPath)
	if err != nil {
		logger.Error("Failed to initialize ledger database", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}
