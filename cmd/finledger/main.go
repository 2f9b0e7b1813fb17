package main

import (
	"context"
	"log/slog"
	"os"

	"finledger/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	// Bootstrap logger; replaced once the configured level is known.
	logger := cli.SetupLogger(slog.LevelInfo)

	cfg := cli.LoadAndValidateConfig(logger)
	if level, err := cfg.SlogLevel(); err == nil && level != slog.LevelInfo {
		logger = cli.SetupLogger(level)
	}

	repo := cli.InitRepository(logger, cfg.DBPath)

	shell := cli.NewShell(cfg, repo, os.Stdin, os.Stdout)
	err := shell.Run(context.Background())

	// Restore may have swapped the repository, close whatever is current.
	if closeErr := shell.Repository().Close(); closeErr != nil {
		logger.Error("Failed to close database", "error", closeErr)
	}

	if err != nil {
		logger.Error("Shell terminated", "error", err)
		os.Exit(1)
	}
}
