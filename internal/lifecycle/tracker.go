// Package lifecycle tracks which activities of the host are visible and
// answers whether the host is in the background.
package lifecycle

import (
	"sort"
	"sync"
)

// Event is an activity lifecycle callback.
type Event string

const (
	Created   Event = "created"
	Started   Event = "started"
	Resumed   Event = "resumed"
	Paused    Event = "paused"
	Stopped   Event = "stopped"
	Destroyed Event = "destroyed"
)

// ParseEvent maps a name to an Event.
func ParseEvent(name string) (Event, bool) {
	switch ev := Event(name); ev {
	case Created, Started, Resumed, Paused, Stopped, Destroyed:
		return ev, true
	}
	return "", false
}

// Tracker records activity lifecycle callbacks.
// The host is backgrounded when no activity is between started and stopped
// and the tracker is not pinned.
type Tracker struct {
	mu      sync.RWMutex
	current string
	started map[string]struct{}
	pinned  int
}

// NewTracker returns a tracker with no visible activities.
func NewTracker() *Tracker {
	return &Tracker{started: make(map[string]struct{})}
}

// Handle applies ev for the named activity.
func (t *Tracker) Handle(activity string, ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev {
	case Created, Resumed, Paused:
		t.current = activity
	case Started:
		t.current = activity
		t.started[activity] = struct{}{}
	case Stopped:
		delete(t.started, activity)
	case Destroyed:
		delete(t.started, activity)
		if t.current == activity {
			t.current = ""
		}
	}
}

func (t *Tracker) Created(activity string)   { t.Handle(activity, Created) }
func (t *Tracker) Started(activity string)   { t.Handle(activity, Started) }
func (t *Tracker) Resumed(activity string)   { t.Handle(activity, Resumed) }
func (t *Tracker) Paused(activity string)    { t.Handle(activity, Paused) }
func (t *Tracker) Stopped(activity string)   { t.Handle(activity, Stopped) }
func (t *Tracker) Destroyed(activity string) { t.Handle(activity, Destroyed) }

// CurrentActivity returns the activity that most recently became current.
func (t *Tracker) CurrentActivity() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Visible returns the started activities in name order.
func (t *Tracker) Visible() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.started))
	for name := range t.started {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Pin keeps the host in the foreground regardless of activities.
// Each Pin must be paired with an Unpin.
func (t *Tracker) Pin() {
	t.mu.Lock()
	t.pinned++
	t.mu.Unlock()
}

// Unpin releases one Pin.
func (t *Tracker) Unpin() {
	t.mu.Lock()
	if t.pinned > 0 {
		t.pinned--
	}
	t.mu.Unlock()
}

// Backgrounded reports whether the host has no visible activity.
func (t *Tracker) Backgrounded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pinned == 0 && len(t.started) == 0
}
