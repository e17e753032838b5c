package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/praxislab/praxis-api/internal/config"
	"github.com/praxislab/praxis-api/internal/domain/leitner"
	"github.com/praxislab/praxis-api/internal/evaluator"
	"github.com/praxislab/praxis-api/internal/platform/postgres"
	"github.com/praxislab/praxis-api/internal/service/auth"
	"github.com/praxislab/praxis-api/internal/service/practice"
)

// application holds the wired-up components of the server.
type application struct {
	config          *config.Config
	logger          *slog.Logger
	db              *sql.DB
	jwtService      auth.JWTService
	practiceService practice.Service
}

// newApplication connects to the database, runs migrations, and builds the
// service graph.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := openDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := applyMigrations(db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	exerciseStore := postgres.NewPostgresExerciseStore(db, logger)
	masteryStore := postgres.NewPostgresMasteryStore(db, logger)
	attemptStore := postgres.NewPostgresAttemptStore(db, logger)

	practiceService := practice.NewService(
		db,
		exerciseStore,
		masteryStore,
		attemptStore,
		evaluator.New(),
		leitner.NewDefaultService(),
		logger,
	)

	return &application{
		config:          cfg,
		logger:          logger,
		db:              db,
		jwtService:      jwtService,
		practiceService: practiceService,
	}, nil
}

// serve runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully.
func (app *application) serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverCtx, cancelServer := context.WithCancel(ctx)
	defer cancelServer()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		app.logger.Info("starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error("server failed", "error", err)
			cancelServer()
		}
	}()

	select {
	case <-shutdownCh:
		app.logger.Info("shutdown signal received")
	case <-serverCtx.Done():
		app.logger.Info("server context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("server shutdown completed")
	return nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", "error", err)
		}
	}
}
