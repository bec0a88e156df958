package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/hotel-listing-api/internal/config"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/platform/redisstore"
	"github.com/phrazzld/hotel-listing-api/internal/platform/sqldb"
	"github.com/phrazzld/hotel-listing-api/internal/repository"
	"github.com/phrazzld/hotel-listing-api/internal/service"
	"github.com/phrazzld/hotel-listing-api/internal/service/auth"
	"github.com/phrazzld/hotel-listing-api/internal/store"
	"github.com/redis/go-redis/v9"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config

	logger  *slog.Logger
	db      *sql.DB
	dialect sqldb.Dialect
	redis   *redis.Client

	credentials  store.CredentialStore
	refreshStore store.RefreshTokenStore

	jwtService     auth.JWTService
	authManager    *auth.AuthManager
	accountService service.AccountService
	countryService service.ResourceService[domain.Country]
	hotelService   service.ResourceService[domain.Hotel]
}

// newApplication creates a new application instance with all dependencies initialized.
// The database must already be open; the application owns it from here on.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	dialect sqldb.Dialect,
) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		dialect: dialect,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes,
		"issuer", cfg.Auth.Issuer)

	hasher, err := auth.NewPasswordHasher(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize password hasher: %w", err)
	}

	app.credentials = sqldb.NewCredentialStore(db, dialect, logger)

	switch cfg.Auth.RefreshStore {
	case "redis":
		app.redis, err = redisstore.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.refreshStore = redisstore.NewRefreshTokenStore(app.redis, logger)
	default:
		app.refreshStore = sqldb.NewRefreshTokenStore(db, dialect, logger)
	}
	logger.Info("refresh token store initialized", "store", cfg.Auth.RefreshStore)

	app.authManager = auth.NewAuthManager(
		auth.NewCredentialValidator(app.credentials, hasher),
		auth.NewTokenIssuer(app.jwtService, app.refreshStore, cfg.Auth),
		app.credentials,
		app.refreshStore,
		logger,
	)
	app.accountService = service.NewAccountService(app.credentials, hasher, logger)

	newUnit := func() *repository.UnitOfWork {
		return repository.NewUnitOfWork(db, dialect, logger)
	}
	app.countryService = service.NewCountryService(newUnit, logger)
	app.hotelService = service.NewHotelService(newUnit, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// newAccountService builds just what account administration needs.
func newAccountService(cfg *config.Config, logger *slog.Logger, db *sql.DB, dialect sqldb.Dialect) (service.AccountService, error) {
	hasher, err := auth.NewPasswordHasher(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize password hasher: %w", err)
	}
	return service.NewAccountService(sqldb.NewCredentialStore(db, dialect, logger), hasher, logger), nil
}

// Run serves HTTP until ctx is canceled, then shuts down and releases resources.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing redis connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
