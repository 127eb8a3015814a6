package producer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBackoff is the pause after the provider rejects a call with 429.
const DefaultBackoff = 30 * time.Second

// RateLimiter throttles LLM calls with a token bucket and backs off after
// the provider reports a rate limit.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	backoff time.Duration
}

// NewRateLimiter allows requestsPerMinute calls per minute.
// A value of zero or less disables throttling; the backoff still applies.
func NewRateLimiter(requestsPerMinute int, backoff time.Duration) *RateLimiter {
	limit := rate.Inf
	burst := 1
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60.0)
		burst = max(1, requestsPerMinute/10)
	}
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, burst),
		backoff: backoff,
	}
}

// Wait blocks until a call can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimit.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimit starts a backoff period. Concurrent callers extend it
// rather than stacking it.
func (r *RateLimiter) RecordRateLimit() {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := time.Now().Add(r.backoff)
	if next.After(r.retryAt) {
		r.retryAt = next
	}
}

// Throttled reports whether the next Wait will block, either because a
// backoff period is running or the token bucket is empty. It consumes nothing.
func (r *RateLimiter) Throttled() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return true
	}
	return r.limiter.Limit() != rate.Inf && r.limiter.Tokens() < 1
}
