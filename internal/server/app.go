// Package server assembles the resilience core: it owns the reporter, the
// style guard, the AI config sandbox, the registry gateway, and the
// authenticator, and exposes the public operations UI/CLI callers use.
// All process-wide state lives here, constructor-injected into the
// components, with explicit startup and teardown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/authguard/internal/auth"
	"github.com/dmitrijs2005/authguard/internal/config"
	"github.com/dmitrijs2005/authguard/internal/configsandbox"
	"github.com/dmitrijs2005/authguard/internal/cryptox"
	"github.com/dmitrijs2005/authguard/internal/logging"
	"github.com/dmitrijs2005/authguard/internal/registry"
	"github.com/dmitrijs2005/authguard/internal/report"
	"github.com/dmitrijs2005/authguard/internal/styleguard"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	reporter *report.Reporter
	guard    *styleguard.Guard
	sandbox  *configsandbox.Sandbox
	gateway  *registry.Gateway
	auth     *auth.Authenticator

	pgStore *registry.PostgresStore // nil when running on the memory store
}

// NewApp wires the core from config. An empty DatabaseDSN selects the
// in-memory registry store.
func NewApp(cfg *config.Config) (*App, error) {
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	return newApp(cfg, logger, prometheus.DefaultRegisterer)
}

// newApp is the test seam: logger and metrics registry are injectable.
func newApp(cfg *config.Config, logger logging.Logger, reg prometheus.Registerer) (*App, error) {
	reporter := report.NewReporter(logger, cfg.ErrorLogCapacity, reg)

	var store registry.Store
	var pgStore *registry.PostgresStore
	if cfg.DatabaseDSN != "" {
		pg, err := registry.NewPostgresStore(cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		store = pg
		pgStore = pg
	} else {
		store = registry.NewMemoryStore()
	}

	gateway := registry.NewGateway(store, logger, reporter)
	crypto := cryptox.NewProvider(cfg.FallbackHashIterations, nil)
	guard := styleguard.NewGuard(cfg.StyleProbeURL, cfg.StyleProbeMarker, cfg.StyleProbeTimeout, nil, logger, reporter)
	sandbox := configsandbox.NewSandbox(cfg.AIAPIKey, cfg.AIModel, nil, logger, reporter)

	authenticator := auth.NewAuthenticator(crypto, gateway, reporter, logger, auth.Options{
		JWTSecret:           []byte(cfg.SecretKey),
		TokenValidity:       cfg.AccessTokenValidityDuration,
		LoginAttemptsPerMin: cfg.LoginAttemptsPerMin,
		LoginAttemptBurst:   cfg.LoginAttemptBurst,
	})

	return &App{
		config:   cfg,
		logger:   logger,
		reporter: reporter,
		guard:    guard,
		sandbox:  sandbox,
		gateway:  gateway,
		auth:     authenticator,
		pgStore:  pgStore,
	}, nil
}

// Startup initializes storage and runs the two independent dependency
// probes concurrently. Only a storage initialization failure is returned:
// styling and AI degradation never prevent startup.
func (app *App) Startup(ctx context.Context) error {
	if err := app.gateway.EnsureStorageInitialized(ctx); err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		app.guard.Detect(ctx)
	}()
	go func() {
		defer wg.Done()
		app.sandbox.Initialize(ctx)
	}()
	wg.Wait()

	app.logger.Info(ctx, "startup complete",
		"style_fallback", app.guard.FallbackActive(),
		"ai_enabled", app.sandbox.Availability().Enabled,
	)
	return nil
}

// Register creates a new account and returns its public view.
func (app *App) Register(ctx context.Context, input auth.RegisterInput) (*registry.PublicView, error) {
	return app.auth.Register(ctx, input)
}

// Login verifies credentials and returns the public view plus an access token.
func (app *App) Login(ctx context.Context, identifier, secret string) (*auth.LoginResult, error) {
	return app.auth.Login(ctx, identifier, secret)
}

// FeatureAvailability returns the current AI feature snapshot.
func (app *App) FeatureAvailability() configsandbox.Availability {
	return app.sandbox.Availability()
}

// RetryAI re-attempts AI configuration initialization on demand.
func (app *App) RetryAI(ctx context.Context) configsandbox.Availability {
	return app.sandbox.Retry(ctx)
}

// StyleFallbackActive reports whether the fallback stylesheet is in effect.
func (app *App) StyleFallbackActive() bool {
	return app.guard.FallbackActive()
}

// RecentErrors exposes the reporter's ring for operational inspection.
func (app *App) RecentErrors(n int) []report.Record {
	return app.reporter.RecentErrors(n)
}

// CountByCategory exposes per-category failure totals.
func (app *App) CountByCategory() map[string]int {
	out := make(map[string]int)
	for k, v := range app.reporter.CountByCategory() {
		out[string(k)] = v
	}
	return out
}

// Close releases resources held by the app.
func (app *App) Close() error {
	if app.pgStore != nil {
		return app.pgStore.Close()
	}
	return nil
}
