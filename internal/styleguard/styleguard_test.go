package styleguard

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/authguard/internal/autherr"
	"github.com/dmitrijs2005/authguard/internal/logging"
	"github.com/dmitrijs2005/authguard/internal/report"
)

// Probes in tests use the server's default client: safeurl rejects
// loopback destinations by design, and httptest binds to 127.0.0.1.
func newTestGuard(t *testing.T, url string) (*Guard, *report.Reporter) {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.DiscardHandler))
	reporter := report.NewReporter(logger, 16, prometheus.NewRegistry())
	g := NewGuard(url, ".auth-form", 2*time.Second, http.DefaultClient, logger, reporter)
	return g, reporter
}

func TestDetect_StylingServicePresent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write([]byte(".auth-form { color: #000; }"))
	}))
	defer srv.Close()

	g, reporter := newTestGuard(t, srv.URL)

	assert.True(t, g.Detect(context.Background()))
	assert.False(t, g.FallbackActive())
	assert.Empty(t, reporter.RecentErrors(10))
}

func TestDetect_MarkerMissingActivatesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("/* not the stylesheet you expected */"))
	}))
	defer srv.Close()

	g, reporter := newTestGuard(t, srv.URL)

	assert.False(t, g.Detect(context.Background()))
	assert.True(t, g.FallbackActive())

	recs := reporter.RecentErrors(10)
	require.Len(t, recs, 1)
	assert.Equal(t, autherr.CategoryStyling, recs[0].Category)
	assert.True(t, recs[0].FallbackUsed)
}

func TestDetect_ServiceDownActivatesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	g, _ := newTestGuard(t, srv.URL)

	assert.False(t, g.Detect(context.Background()))
	assert.True(t, g.FallbackActive())
}

func TestDetect_SingleAttemptPerLifecycle(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(".auth-form{}"))
	}))
	defer srv.Close()

	g, _ := newTestGuard(t, srv.URL)

	assert.True(t, g.Detect(context.Background()))
	assert.True(t, g.Detect(context.Background()))
	assert.Equal(t, 1, hits)
}

func TestActivateFallback_Idempotent(t *testing.T) {
	g, _ := newTestGuard(t, "http://styles.invalid/app.css")

	g.ActivateFallback()
	g.ActivateFallback()

	assert.True(t, g.FallbackActive())
}

func TestFallbackCSS_RendersAuthForm(t *testing.T) {
	css := FallbackCSS()
	assert.Contains(t, css, ".auth-form")
	assert.Contains(t, css, ".auth-error")
}
