// Package ratelimit applies per-client token bucket rate limiting to
// the download paths. The distributed backend lives in Redis; when
// Redis is unreachable the limiter degrades to local in-memory buckets
// and probes for recovery.
package ratelimit

import (
	"context"
	"time"
)

// Backend performs one atomic token bucket check.
type Backend interface {
	// CheckRateLimit consumes requested tokens from the bucket named by
	// key. The bucket holds at most maxTokens and refills at refillRate
	// tokens per second. It reports whether the request is allowed and
	// how many whole tokens remain.
	CheckRateLimit(ctx context.Context, key string, maxTokens int, refillRate float64, requested int) (bool, int, error)
}

// Result contains the result of a rate limit check
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter applies one bucket configuration across all client keys.
type Limiter struct {
	backend Backend
	rate    float64
	burst   int
}

// New creates a limiter refilling rate tokens per second up to burst.
func New(backend Backend, rate float64, burst int) *Limiter {
	return &Limiter{backend: backend, rate: rate, burst: burst}
}

// Allow checks if a single request is allowed for the given key.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	allowed, remaining, err := l.backend.CheckRateLimit(ctx, key, l.burst, l.rate, 1)
	if err != nil {
		return Result{}, err
	}

	// Calculate when the bucket will be full again.
	tokensNeeded := float64(l.burst - remaining)
	refillSeconds := tokensNeeded / l.rate
	resetAt := time.Now().Add(time.Duration(refillSeconds * float64(time.Second)))

	return Result{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// KeyForIP returns the rate limit key for a client IP address.
func KeyForIP(ip string) string {
	return "ip:" + ip
}
