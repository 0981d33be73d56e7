// Package report implements the process-wide diagnostic sink. Every
// component funnels its autherr.Error values here; the reporter keeps a
// bounded append-only ring of sanitized records for operational inspection
// and exports per-category counters to Prometheus.
package report

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/authguard/internal/autherr"
	"github.com/dmitrijs2005/authguard/internal/logging"
)

// DefaultCapacity is used when the configured ring capacity is not positive.
const DefaultCapacity = 256

// Record is one sanitized diagnostic entry. It never holds secrets,
// digests, or raw dependency errors.
type Record struct {
	Category     autherr.Category
	Message      string
	FallbackUsed bool
	Context      string
	At           time.Time
}

// Reporter is a concurrency-safe, append-only diagnostic sink.
type Reporter struct {
	logger logging.Logger

	mu      sync.Mutex
	ring    []Record
	next    int
	size    int
	counts  map[autherr.Category]int
	counter *prometheus.CounterVec
}

// NewReporter creates a Reporter with the given ring capacity. Metrics are
// registered on reg when it is non-nil; registration failures are ignored
// so a duplicate registry never takes the reporter down.
func NewReporter(logger logging.Logger, capacity int, reg prometheus.Registerer) *Reporter {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authguard_errors_total",
		Help: "Reported dependency failures by category.",
	}, []string{"category"})

	if reg != nil {
		_ = reg.Register(counter)
	}

	return &Reporter{
		logger:  logger.With("component", "report"),
		ring:    make([]Record, capacity),
		counts:  make(map[autherr.Category]int),
		counter: counter,
	}
}

// Report appends a sanitized record for e. It never panics and ignores nil
// errors. The raw cause, if any, goes only to the debug log channel.
func (r *Reporter) Report(ctx context.Context, e *autherr.Error, opContext string) {
	if r == nil || e == nil {
		return
	}

	rec := Record{
		Category:     e.Category,
		Message:      e.Message,
		FallbackUsed: e.FallbackUsed,
		Context:      opContext,
		At:           e.At,
	}

	r.mu.Lock()
	r.ring[r.next] = rec
	r.next = (r.next + 1) % len(r.ring)
	if r.size < len(r.ring) {
		r.size++
	}
	r.counts[e.Category]++
	r.mu.Unlock()

	r.counter.WithLabelValues(string(e.Category)).Inc()

	r.logger.Warn(ctx, "dependency failure",
		"category", string(e.Category),
		"message", e.Message,
		"fallback", e.FallbackUsed,
		"op", opContext,
	)
	if cause := e.Unwrap(); cause != nil {
		r.logger.Debug(ctx, "dependency failure cause", "category", string(e.Category), "cause", cause.Error())
	}
}

// RecentErrors returns up to n records, newest first.
func (r *Reporter) RecentErrors(n int) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 0 || r.size == 0 {
		return nil
	}
	if n > r.size {
		n = r.size
	}

	out := make([]Record, 0, n)
	idx := r.next
	for i := 0; i < n; i++ {
		idx--
		if idx < 0 {
			idx = len(r.ring) - 1
		}
		out = append(out, r.ring[idx])
	}
	return out
}

// CountByCategory returns a copy of the per-category totals since start.
func (r *Reporter) CountByCategory() map[autherr.Category]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[autherr.Category]int, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}
