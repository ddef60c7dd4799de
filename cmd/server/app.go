package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/studyloop/mastery-api/internal/config"
	"github.com/studyloop/mastery-api/internal/domain/sm2"
	"github.com/studyloop/mastery-api/internal/platform/postgres"
	"github.com/studyloop/mastery-api/internal/service"
	"github.com/studyloop/mastery-api/internal/service/auth"
	"github.com/studyloop/mastery-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	masteryStore store.MasteryStore

	jwtService        auth.JWTService
	scheduler         sm2.Service
	assessmentService service.AssessmentService
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.masteryStore = postgres.NewMasteryStore(db, logger)

	app.scheduler = sm2.NewServiceWithParams(sm2.NewParams(sm2.ParamsConfig{
		MinEaseFactor:      cfg.SRS.MinEaseFactor,
		MaxEaseFactor:      cfg.SRS.MaxEaseFactor,
		FirstIntervalDays:  cfg.SRS.FirstIntervalDays,
		SecondIntervalDays: cfg.SRS.SecondIntervalDays,
	}))

	app.assessmentService = service.NewAssessmentService(
		db,
		app.masteryStore,
		app.scheduler,
		logger,
	)

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection",
				slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
