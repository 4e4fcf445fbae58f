package ratelimit

import (
	"sync"
	"time"
)

// Limiter gates inbound requests by client key.
type Limiter interface {
	Allow(key string) bool
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// TokenBucket is an in-process per-key token bucket with lazy refill. There
// are no background timers; refill is computed on access. Keys are never
// evicted, which is an accepted limitation for a single-process demo.
type TokenBucket struct {
	capacity     int
	refillWindow time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewTokenBucket creates a limiter allowing capacity requests per key, with
// a full bucket refilling over refillWindow.
func NewTokenBucket(capacity int, refillWindow time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		refillWindow: refillWindow,
		buckets:      make(map[string]*bucket),
		now:          time.Now,
	}
}

// Allow consumes one token for key if available. A first access starts from a
// full bucket. A denied call still keeps the computed refill and advances the
// bucket's timestamp.
func (tb *TokenBucket) Allow(key string) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: tb.capacity, lastRefill: now}
		tb.buckets[key] = b
	}

	elapsed := now.Sub(b.lastRefill)
	refill := int(elapsed.Seconds() * float64(tb.capacity) / tb.refillWindow.Seconds())
	tokens := b.tokens + refill
	if tokens > tb.capacity {
		tokens = tb.capacity
	}

	if tokens <= 0 {
		b.tokens = tokens
		b.lastRefill = now
		return false
	}

	b.tokens = tokens - 1
	b.lastRefill = now
	return true
}
