package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/invitelinks/internal/invites/http"
	"github.com/aussiebroadwan/invitelinks/internal/invites/service"
	"github.com/aussiebroadwan/invitelinks/internal/invites/store"
	"github.com/aussiebroadwan/invitelinks/internal/invites/store/drivers/sqlite"
	"github.com/aussiebroadwan/invitelinks/pkg/jwtx"
	"github.com/aussiebroadwan/invitelinks/pkg/slogx"
	"github.com/jonboulle/clockwork"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application is the invitation link service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger
	clock  clockwork.Clock

	db       store.Store
	keys     *jwtx.KeySet
	verifier jwtx.Verifier

	linkService    *service.LinkService
	welcomeService *service.WelcomeService
	keyRefresh     *service.KeyRefreshService // nil with a static key

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:   cfg,
		clock: clockwork.NewRealClock(),
		logger: slogx.New(slogx.Config{
			Service: "invites-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keys, refresher, err := InitVerifierKeys(context.Background(), cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize verifier keys: %w", err)
	}
	app.keys = keys
	app.keyRefresh = refresher
	app.verifier = jwtx.NewVerifierEdDSA(keys, jwtx.VerifyOptions{
		Issuer: cfg.Issuer,
		Leeway: 30 * time.Second,
		Clock:  app.clock,
	})

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	if app.keyRefresh != nil {
		app.keyRefresh.Start()
	}

	app.logger.Info("invites service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	app.logger.Info("shutting down invites service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.keyRefresh != nil {
		app.keyRefresh.Stop()
	}
	app.welcomeService.Close()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("invites service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

func (app *Application) initServices() error {
	welcome, err := service.NewWelcomeService(app.db, app.clock, app.cfg.WelcomeCacheTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize welcome cache: %w", err)
	}
	app.welcomeService = welcome
	app.linkService = service.NewLinkService(app.db, app.clock, app.cfg.PublicBaseURL, welcome)
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.LinkService = app.linkService
	router.WelcomeService = app.welcomeService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
