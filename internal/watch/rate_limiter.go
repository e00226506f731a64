package watch

import (
	"sync"
	"time"
)

// RateLimiter throttles callback execution to at most eventsPerSecond.
// Filesystem notifications arrive in bursts (a single build touches a
// directory thousands of times); without throttling every touch becomes a
// callback.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewRateLimiter creates a limiter allowing eventsPerSecond events.
func NewRateLimiter(eventsPerSecond int) *RateLimiter {
	if eventsPerSecond <= 0 {
		eventsPerSecond = 1
	}
	return &RateLimiter{interval: time.Second / time.Duration(eventsPerSecond)}
}

// Allow reports whether an event may fire now, consuming the slot if so.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()
	if now.Sub(rl.last) < rl.interval {
		return false
	}
	rl.last = now
	return true
}

// Coalesce runs fn only if the limiter allows it; bursts collapse into the
// first event of each interval.
func (rl *RateLimiter) Coalesce(fn func()) {
	if rl.Allow() {
		fn()
	}
}
