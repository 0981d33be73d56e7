// Package configsandbox isolates the optional AI-configuration dependency
// behind a failure boundary. Whatever goes wrong while setting up the AI
// client (missing credentials, an unreachable service, even a panic inside
// the vendor SDK) the sandbox absorbs, flips availability to disabled, and
// reports a CONFIG failure. Callers only ever see the availability
// snapshot; no error and no panic crosses this boundary.
package configsandbox

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/genai"

	"github.com/dmitrijs2005/authguard/internal/autherr"
	"github.com/dmitrijs2005/authguard/internal/logging"
	"github.com/dmitrijs2005/authguard/internal/report"
)

// Availability is the process-wide snapshot describing whether the
// optional AI feature is usable. It is replaced wholesale by Initialize
// and Retry; readers always get a consistent value.
type Availability struct {
	Enabled   bool
	Model     string
	CheckedAt time.Time
}

// ClientFactory builds the AI client. Injectable so tests can simulate
// failures without network access.
type ClientFactory func(ctx context.Context, apiKey string) (*genai.Client, error)

func defaultFactory(ctx context.Context, apiKey string) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
}

// Sandbox guards initialization of the AI-configuration dependency.
type Sandbox struct {
	apiKey   string
	model    string
	factory  ClientFactory
	logger   logging.Logger
	reporter *report.Reporter

	mu     sync.Mutex // single in-flight initialization
	client *genai.Client
	avail  atomic.Pointer[Availability]
}

// NewSandbox creates a Sandbox in the disabled state. factory may be nil.
func NewSandbox(apiKey, model string, factory ClientFactory, logger logging.Logger, reporter *report.Reporter) *Sandbox {
	if factory == nil {
		factory = defaultFactory
	}
	s := &Sandbox{
		apiKey:   apiKey,
		model:    model,
		factory:  factory,
		logger:   logger.With("component", "configsandbox"),
		reporter: reporter,
	}
	s.avail.Store(&Availability{Enabled: false, Model: model, CheckedAt: time.Now()})
	return s
}

// Initialize attempts to set up the AI dependency. It never returns an
// error and never panics: any failure disables the feature, emits a CONFIG
// report, and is reflected in the returned snapshot.
func (s *Sandbox) Initialize(ctx context.Context) Availability {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.tryInit(ctx)
	if err != nil {
		s.client = nil
		s.store(false)
		s.reporter.Report(ctx, autherr.New(autherr.CategoryConfig, true, err), "configsandbox.initialize")
		return *s.avail.Load()
	}

	s.store(true)
	s.logger.Info(ctx, "ai configuration initialized", "model", s.model)
	return *s.avail.Load()
}

// tryInit runs the factory inside a recover boundary.
func (s *Sandbox) tryInit(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic during ai initialization: %v", p)
		}
	}()

	if s.apiKey == "" {
		return fmt.Errorf("ai api key not configured")
	}

	client, ferr := s.factory(ctx, s.apiKey)
	if ferr != nil {
		return ferr
	}
	if client == nil {
		return fmt.Errorf("ai client factory returned nil client")
	}

	s.client = client
	return nil
}

// Retry re-attempts initialization on demand, superseding the previous
// availability snapshot. Same guarantees as Initialize.
func (s *Sandbox) Retry(ctx context.Context) Availability {
	return s.Initialize(ctx)
}

// Availability returns the current snapshot in O(1) without touching the
// initialization path. Readers never block behind Initialize or Retry.
func (s *Sandbox) Availability() Availability {
	return *s.avail.Load()
}

// Client returns the AI client, or nil while the feature is disabled.
func (s *Sandbox) Client() *genai.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

func (s *Sandbox) store(enabled bool) {
	s.avail.Store(&Availability{Enabled: enabled, Model: s.model, CheckedAt: time.Now()})
}
