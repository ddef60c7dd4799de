// Package main implements the entry point for the mastery API server, which
// tracks student skill mastery and schedules reviews using spaced repetition.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/studyloop/mastery-api/internal/config"
	"github.com/studyloop/mastery-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String(
		"migrate",
		"",
		"run a migration command (up, down, status, version) and exit",
	)
	flag.Parse()

	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if *migrateCmd != "" {
		if err := runMigrations(cfg, *migrateCmd); err != nil {
			appLogger.Error("migration failed",
				slog.String("command", *migrateCmd),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to set up database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		appLogger.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := app.Run(context.Background()); err != nil {
		appLogger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	return cfg, appLogger, nil
}
