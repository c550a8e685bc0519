package scrape

import (
	"context"
	"sync"
	"time"
)

// rateLimiter is a sliding-window limiter shared by all scrapers. It
// keeps the timestamps of recent requests and blocks until the oldest
// one ages out of the window.
type rateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	sent   []time.Time
	now    func() time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = 60 * time.Second
	}
	return &rateLimiter{limit: limit, window: window, now: time.Now}
}

// Wait blocks until a request slot is available or the context ends.
func (r *rateLimiter) Wait(ctx context.Context) error {
	for {
		wait := r.reserve()
		if wait <= 0 {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve records the request and returns zero, or returns how long
// the caller must wait before trying again.
func (r *rateLimiter) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-r.window)
	kept := r.sent[:0]
	for _, t := range r.sent {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	r.sent = kept

	if len(r.sent) < r.limit {
		r.sent = append(r.sent, now)
		return 0
	}
	return r.sent[0].Add(r.window).Sub(now)
}
