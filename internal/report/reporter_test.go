package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/authguard/internal/autherr"
	"github.com/dmitrijs2005/authguard/internal/logging"
)

func newTestReporter(t *testing.T, capacity int) (*Reporter, *prometheus.Registry) {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.DiscardHandler))
	reg := prometheus.NewRegistry()
	return NewReporter(logger, capacity, reg), reg
}

func TestReport_RecordIsSanitized(t *testing.T) {
	r, _ := newTestReporter(t, 8)

	cause := errors.New("dial tcp 10.1.2.3:5432: connect: connection refused")
	r.Report(context.Background(), autherr.New(autherr.CategoryRegistry, false, cause), "getUser")

	recs := r.RecentErrors(1)
	require.Len(t, recs, 1)
	assert.Equal(t, autherr.CategoryRegistry, recs[0].Category)
	assert.Equal(t, "getUser", recs[0].Context)
	assert.NotContains(t, recs[0].Message, "10.1.2.3")
}

func TestReport_NilErrorIgnored(t *testing.T) {
	r, _ := newTestReporter(t, 8)

	assert.NotPanics(t, func() {
		r.Report(context.Background(), nil, "noop")
	})
	assert.Empty(t, r.RecentErrors(10))
}

func TestRecentErrors_NewestFirstAndBounded(t *testing.T) {
	r, _ := newTestReporter(t, 4)

	for i := 0; i < 6; i++ {
		e := autherr.WithMessage(autherr.CategoryConfig, fmt.Sprintf("msg-%d", i), true, nil)
		r.Report(context.Background(), e, "init")
	}

	recs := r.RecentErrors(10)
	require.Len(t, recs, 4) // capacity bound
	assert.Equal(t, "msg-5", recs[0].Message)
	assert.Equal(t, "msg-2", recs[3].Message)
}

func TestCountByCategory(t *testing.T) {
	r, reg := newTestReporter(t, 8)

	r.Report(context.Background(), autherr.New(autherr.CategoryCrypto, true, nil), "hash")
	r.Report(context.Background(), autherr.New(autherr.CategoryCrypto, true, nil), "hash")
	r.Report(context.Background(), autherr.New(autherr.CategoryStyling, true, nil), "detect")

	counts := r.CountByCategory()
	assert.Equal(t, 2, counts[autherr.CategoryCrypto])
	assert.Equal(t, 1, counts[autherr.CategoryStyling])

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	c, err := testutil.GatherAndCount(reg, "authguard_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 2, c) // two label values
}

func TestReport_ConcurrentAppends(t *testing.T) {
	r, _ := newTestReporter(t, 128)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				r.Report(context.Background(), autherr.New(autherr.CategoryRegistry, false, nil), "save")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, r.CountByCategory()[autherr.CategoryRegistry])
	assert.Len(t, r.RecentErrors(200), 100)
}
