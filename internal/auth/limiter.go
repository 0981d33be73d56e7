package auth

import (
	"sync"

	"golang.org/x/time/rate"
)

// loginLimiter throttles login attempts per identifier so a credential
// stuffing run against one account cannot starve the registry.
type loginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newLoginLimiter(limit rate.Limit, burst int) *loginLimiter {
	return &loginLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

// allow reports whether one more attempt for identifier fits the budget.
func (l *loginLimiter) allow(identifier string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[identifier]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[identifier] = lim
	}
	l.mu.Unlock()

	return lim.Allow()
}
