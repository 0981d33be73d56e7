package server

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/authguard/internal/auth"
	"github.com/dmitrijs2005/authguard/internal/common"
	"github.com/dmitrijs2005/authguard/internal/config"
	"github.com/dmitrijs2005/authguard/internal/logging"
)

// degradedConfig produces a config whose styling and AI dependencies are
// both unreachable, running on the in-memory registry store.
func degradedConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StyleProbeURL = "http://127.0.0.1:1/app.css" // refused by the safe client
	cfg.StyleProbeTimeout = 500 * time.Millisecond
	cfg.AIAPIKey = "" // sandbox disables the feature
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.DiscardHandler))
	app, err := newApp(cfg, logger, prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestApp_AuthenticationSurvivesDegradedDependencies(t *testing.T) {
	app := newTestApp(t, degradedConfig())
	ctx := context.Background()

	require.NoError(t, app.Startup(ctx))

	// both optional dependencies fell back
	assert.True(t, app.StyleFallbackActive())
	assert.False(t, app.FeatureAvailability().Enabled)

	counts := app.CountByCategory()
	assert.Equal(t, 1, counts["STYLING"])
	assert.Equal(t, 1, counts["CONFIG"])

	// the authentication path is unaffected
	view, err := app.Register(ctx, auth.RegisterInput{Username: "alice", Secret: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Username)

	res, err := app.Login(ctx, "alice", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)

	_, err = app.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestApp_RetryAISupersedesAvailability(t *testing.T) {
	app := newTestApp(t, degradedConfig())
	ctx := context.Background()

	require.NoError(t, app.Startup(ctx))
	require.False(t, app.FeatureAvailability().Enabled)

	// still no key: the retry runs, reports again, stays disabled
	avail := app.RetryAI(ctx)
	assert.False(t, avail.Enabled)
	assert.Equal(t, 2, app.CountByCategory()["CONFIG"])
}

func TestApp_RecentErrorsAreSanitized(t *testing.T) {
	app := newTestApp(t, degradedConfig())
	require.NoError(t, app.Startup(context.Background()))

	recs := app.RecentErrors(10)
	require.NotEmpty(t, recs)
	for _, r := range recs {
		assert.NotContains(t, r.Message, "127.0.0.1")
		assert.NotContains(t, r.Message, "connect:")
	}
}

func TestApp_StartupIdempotentStorageInit(t *testing.T) {
	app := newTestApp(t, degradedConfig())

	require.NoError(t, app.Startup(context.Background()))
	require.NoError(t, app.Startup(context.Background()))
}
