// Package ratelimit implements fixed-window admission control keyed by a
// caller identifier, backed by a bounded TTL cache so the counter map cannot
// grow without bound.
package ratelimit

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultLimit      = 5
	DefaultWindow     = 60 * time.Second
	DefaultMaxEntries = 500
)

// Result is the admission decision for one request.
type Result struct {
	Allowed   bool
	Remaining int
}

type entry struct {
	remaining   int
	windowStart time.Time
}

// Limiter allows up to limit requests per identifier within a fixed window
// measured from the identifier's first request. An expired window is the same
// as never having seen the identifier.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	cache  *expirable.LRU[string, *entry]

	now func() time.Time
}

func New(limit int, window time.Duration, maxEntries int) *Limiter {
	return &Limiter{
		limit:  limit,
		window: window,
		cache:  expirable.NewLRU[string, *entry](maxEntries, nil, window),
		now:    time.Now,
	}
}

// Check consumes one unit of the identifier's quota, or denies without
// consuming anything once the quota is exhausted.
func (l *Limiter) Check(identifier string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	// The cache TTL evicts idle entries on its own; the explicit window check
	// keeps the decision correct even when an entry is still resident.
	e, ok := l.cache.Get(identifier)
	if !ok || now.Sub(e.windowStart) >= l.window {
		l.cache.Add(identifier, &entry{
			remaining:   l.limit - 1,
			windowStart: now,
		})
		return Result{Allowed: true, Remaining: l.limit - 1}
	}

	if e.remaining > 0 {
		e.remaining--
		return Result{Allowed: true, Remaining: e.remaining}
	}

	return Result{Allowed: false, Remaining: 0}
}
