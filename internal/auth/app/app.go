package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	httpapi "github.com/aussiebroadwan/tollgate/internal/auth/http"
	"github.com/aussiebroadwan/tollgate/internal/auth/limiter"
	"github.com/aussiebroadwan/tollgate/internal/auth/service"
	"github.com/aussiebroadwan/tollgate/internal/auth/session"
	"github.com/aussiebroadwan/tollgate/internal/auth/store"
	"github.com/aussiebroadwan/tollgate/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/tollgate/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tollgate/pkg/httpx"
	"github.com/aussiebroadwan/tollgate/pkg/jwtx"
	"github.com/aussiebroadwan/tollgate/pkg/otpx"
	"github.com/aussiebroadwan/tollgate/pkg/slogx"
)

// BuildVersion is overridden at build time with
// -ldflags "-X github.com/aussiebroadwan/tollgate/internal/auth/app.BuildVersion=...".
var BuildVersion = "v0.1.0"

// Application encapsulates the service with all its dependencies.
type Application struct {
	cfg       Config
	logger    *slog.Logger
	logCloser io.Closer

	// Core dependencies
	db      store.Store
	redis   *redis.Client // nil without REDIS_URL
	issuer  session.Issuer
	limiter limiter.Limiter

	// Services
	authService         *service.AuthService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application with all dependencies initialized. On error
// everything opened so far is released.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closer, err := slogx.New(slogx.Config{
		Service: "tollgate",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		File:    cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app := &Application{
		cfg:       cfg,
		logger:    logger,
		logCloser: closer,
	}

	if err := app.init(); err != nil {
		app.release()
		return nil, err
	}
	return app, nil
}

func (app *Application) init() error {
	if err := app.initDatabase(); err != nil {
		return err
	}
	if err := app.initRedis(); err != nil {
		return err
	}
	if err := app.initIssuer(); err != nil {
		return err
	}
	app.initLimiter()
	app.initServices()
	app.initHTTP()
	return nil
}

// Handler exposes the configured router, mainly for in-process tests.
func (app *Application) Handler() http.Handler { return app.router }

// AuthService exposes the state machine to the server binary's admin
// bootstrap.
func (app *Application) AuthService() *service.AuthService { return app.authService }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("tollgate starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"token_mode", app.issuer.Mode(),
		"db_driver", app.cfg.DBDriver,
		"require_2fa", app.cfg.Require2FA,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			app.release()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down tollgate...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	app.logger.Info("tollgate stopped")
	return app.release()
}

// Close releases resources without touching the HTTP server. Used when the
// application was built but never run.
func (app *Application) Close() error { return app.release() }

func (app *Application) release() error {
	var errs []error

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
			errs = append(errs, err)
		}
		app.redis = nil
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			errs = append(errs, err)
		}
		app.db = nil
	}

	if app.logCloser != nil {
		if err := app.logCloser.Close(); err != nil {
			errs = append(errs, err)
		}
		app.logCloser = nil
	}

	return errors.Join(errs...)
}

// initDatabase opens the configured driver and applies migrations.
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DBDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(app.cfg.DatabaseURL)
	default:
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DBDriver)
	return nil
}

// initRedis connects when REDIS_URL is set. A configured but unreachable
// Redis fails startup.
func (app *Application) initRedis() error {
	if app.cfg.RedisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	app.redis = client

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	app.logger.Info("redis connected", "addr", opts.Addr, "db", opts.DB)
	return nil
}

func (app *Application) initIssuer() error {
	mode, _ := session.ParseMode(app.cfg.TokenMode)

	if mode == session.ModeOpaque {
		var table session.Table
		if app.redis != nil {
			table = session.NewRedisTable(app.redis, "")
		} else {
			table = session.NewMemoryTable()
			app.logger.Warn("opaque sessions are held in memory and will not survive a restart")
		}
		app.issuer = session.NewOpaqueIssuer(table)
		return nil
	}

	secret := []byte(app.cfg.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, jwtx.MinSecretBytes)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("failed to generate signing secret: %w", err)
		}
		app.logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}

	issuer, err := session.NewSignedIssuer(secret, app.cfg.Issuer, app.cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	app.issuer = issuer
	return nil
}

func (app *Application) initLimiter() {
	if app.redis != nil {
		app.limiter = limiter.NewRedisLimiter(app.redis, app.cfg.Rules(), "")
		return
	}
	app.limiter = limiter.NewMemoryLimiter(app.cfg.Rules())
}

func (app *Application) initServices() {
	app.authService = service.NewAuthService(
		app.db,
		otpx.New(app.cfg.Issuer, app.cfg.OTPSkew),
		app.issuer,
		service.Policy{
			Require2FA:   app.cfg.Require2FA,
			Hide2FAState: app.cfg.Hide2FAState,
		},
	)

	var pruners []limiter.Pruner
	if p, ok := app.limiter.(limiter.Pruner); ok {
		pruners = append(pruners, p)
	}
	app.housekeepingService = service.NewHousekeepingService(
		app.logger,
		app.cfg.HousekeepingInterval,
		pruners...,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.authService,
		app.limiter,
		app.db,
		BuildVersion,
		app.logger,
	)
	router.ClientKey = httpx.ClientKeyExtractor(app.cfg.TrustProxy)
	if app.redis != nil {
		client := app.redis
		router.Redis = httpapi.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
