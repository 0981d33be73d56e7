// Package styleguard probes the external styling service and activates a
// self-contained fallback stylesheet when the service does not deliver its
// classes in time. The guard is entirely independent of the authentication
// path: nothing here is ever consulted while a login or registration
// request is in flight.
package styleguard

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/doyensec/safeurl"

	"github.com/dmitrijs2005/authguard/internal/autherr"
	"github.com/dmitrijs2005/authguard/internal/logging"
	"github.com/dmitrijs2005/authguard/internal/report"
)

//go:embed fallback.css
var fallbackCSS string

// maxStylesheetBytes caps how much of the stylesheet body the probe reads.
const maxStylesheetBytes = 1 << 20

// Guard performs a single styling-service probe per process lifecycle and
// tracks whether the fallback stylesheet is active.
type Guard struct {
	probeURL string
	marker   string
	timeout  time.Duration
	client   *http.Client
	logger   logging.Logger
	reporter *report.Reporter

	mu        sync.Mutex
	attempted bool
	detected  bool

	fallbackActive atomic.Bool
}

// NewGuard creates a Guard. marker is the CSS class the probe expects to
// find in the stylesheet body. client may be nil, in which case an
// SSRF-hardened outbound client is built with the given timeout.
func NewGuard(probeURL, marker string, timeout time.Duration, client *http.Client, logger logging.Logger, reporter *report.Reporter) *Guard {
	if client == nil {
		client = newSafeClient(timeout)
	}
	return &Guard{
		probeURL: probeURL,
		marker:   marker,
		timeout:  timeout,
		client:   client,
		logger:   logger.With("component", "styleguard"),
		reporter: reporter,
	}
}

// newSafeClient builds an outbound HTTP client that refuses private,
// loopback, and link-local destinations even after DNS resolution.
func newSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

// Detect probes the styling service once. The first call performs the
// probe; later calls return the cached outcome. A failed probe activates
// the fallback and reports a STYLING failure before returning false.
func (g *Guard) Detect(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.attempted {
		return g.detected
	}
	g.attempted = true

	err := g.probe(ctx)
	if err == nil {
		g.detected = true
		g.logger.Info(ctx, "styling service detected", "url", g.probeURL)
		return true
	}

	g.activateFallbackLocked()
	g.reporter.Report(ctx, autherr.New(autherr.CategoryStyling, true, err), "styleguard.detect")
	return false
}

func (g *Guard) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.probeURL, nil)
	if err != nil {
		return err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStylesheetBytes))
	if err != nil {
		return err
	}

	if !strings.Contains(string(body), g.marker) {
		return fmt.Errorf("probe marker %q not present", g.marker)
	}
	return nil
}

// ActivateFallback switches the fallback stylesheet on. Idempotent.
func (g *Guard) ActivateFallback() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.activateFallbackLocked()
}

func (g *Guard) activateFallbackLocked() {
	g.fallbackActive.Store(true)
}

// FallbackActive reports whether the fallback stylesheet is in effect.
// Safe to call from any goroutine without blocking.
func (g *Guard) FallbackActive() bool {
	return g.fallbackActive.Load()
}

// FallbackCSS returns the embedded minimal stylesheet.
func FallbackCSS() string {
	return fallbackCSS
}
