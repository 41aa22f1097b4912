// Package ratelimit implements a per-key sliding-window request counter used
// by the HTTP edge. Each key (client IP) gets an independent counter, so one
// noisy client never throttles another.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter counts requests per key within a trailing window. Allow reports
// whether the request fits; the window slides with each call, so the budget
// holds over every trailing span, not just aligned intervals. All state is
// in-process and mutex-guarded; this is the only shared mutable state the
// service holds besides the database pool.
type Limiter struct {
	mu sync.Mutex
	// hits holds, per key, the timestamps of admitted requests that still
	// fall inside the trailing window, oldest first
	hits     map[string][]time.Time
	max      int
	duration time.Duration
	// now is injectable for tests; defaults to time.Now
	now func() time.Time
}

// New creates a limiter allowing max requests per duration for each key
func New(max int, duration time.Duration) *Limiter {
	return &Limiter{
		hits:     make(map[string][]time.Time),
		max:      max,
		duration: duration,
		now:      time.Now,
	}
}

// Allow records one request for key and reports whether it is within the
// limit. A request passes only when fewer than max requests were admitted for
// the key inside the trailing window ending now; rejected requests are not
// recorded, so a throttled client recovers as soon as old hits age out.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	hits := l.trim(l.hits[key], now)

	if len(hits) >= l.max {
		l.hits[key] = hits
		return false
	}

	l.hits[key] = append(hits, now)
	return true
}

// trim drops timestamps that have aged out of the trailing window ending at
// now. The slice is oldest first, so it cuts from the front.
func (l *Limiter) trim(hits []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-l.duration)
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

// Prune drops keys whose every hit has aged out. Called periodically so the
// map does not grow with one entry per IP ever seen.
func (l *Limiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, hits := range l.hits {
		if trimmed := l.trim(hits, now); len(trimmed) == 0 {
			delete(l.hits, key)
		} else {
			l.hits[key] = trimmed
		}
	}
}

// StartPruning prunes expired entries on the given interval until stop is
// closed.
func (l *Limiter) StartPruning(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Prune()
			case <-stop:
				return
			}
		}
	}()
}
