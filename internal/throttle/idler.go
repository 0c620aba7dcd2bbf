// Package throttle guards against bursts of repeated events.
package throttle

import (
	"sync"
	"time"
)

// DefaultMinInterval is the minimum gap between accepted events.
const DefaultMinInterval = 800 * time.Millisecond

// RapidIdler runs an action only if enough time passed since the last accepted one.
type RapidIdler struct {
	minInterval time.Duration
	now         func() time.Time

	mu          sync.Mutex
	last        time.Time
	initialized bool
}

// NewRapidIdler returns an idler with the given interval; non-positive values use DefaultMinInterval.
func NewRapidIdler(minInterval time.Duration) *RapidIdler {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &RapidIdler{minInterval: minInterval, now: time.Now}
}

// Allow reports whether an event arriving now is accepted, recording it if so.
func (r *RapidIdler) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.initialized && now.Sub(r.last) <= r.minInterval {
		return false
	}
	r.initialized = true
	r.last = now
	return true
}

// Throttle runs fn if the event is accepted and reports whether it ran.
func (r *RapidIdler) Throttle(fn func()) bool {
	if !r.Allow() {
		return false
	}
	fn()
	return true
}
