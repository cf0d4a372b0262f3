package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/worktodo-api/internal/config"
	"github.com/phrazzld/worktodo-api/internal/platform/postgres"
	"github.com/phrazzld/worktodo-api/internal/service/auth"
	"github.com/phrazzld/worktodo-api/internal/service/upload"
	"github.com/phrazzld/worktodo-api/internal/store"
)

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (interfaces, so tests can substitute mocks)
	taskStore store.TaskStore
	fileStore store.FileStore
	userStore store.UserStore

	// Services
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	cookieManager    *auth.CookieManager
	uploadService    *upload.Service
}

// newApplication creates an application instance with all dependencies
// initialized. Configuration, logging and the database connection must be
// established first.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes,
		"refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()
	app.cookieManager = auth.NewCookieManager(
		cfg.Auth.CookieSecure,
		time.Duration(cfg.Auth.TokenLifetimeMinutes)*time.Minute,
		time.Duration(cfg.Auth.RefreshTokenLifetimeMinutes)*time.Minute,
	)

	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.fileStore = postgres.NewPostgresFileStore(db, logger)
	app.userStore = postgres.NewPostgresUserStore(db, bcrypt.DefaultCost, logger)

	app.uploadService, err = upload.NewService(cfg.Upload.Dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload service: %w", err)
	}
	logger.Info("Upload service initialized", "dir", cfg.Upload.Dir)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
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
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
