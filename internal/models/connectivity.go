package models

import "time"

// TimestampLayout is the layout of persisted onlineSince/offlineSince values.
const TimestampLayout = "2006-01-02 15:04:05"

// Phase is the tagged connectivity state of the host.
type Phase string

const (
	PhaseUnknown Phase = "unknown"
	PhaseOnline  Phase = "online"
	PhaseOffline Phase = "offline"
)

// ConnectivityState is the persisted connectivity snapshot.
// After a completed cycle exactly one of OnlineSince and OfflineSince is set.
type ConnectivityState struct {
	IsOnline     bool   `json:"is_online"`
	OnlineSince  string `json:"online_since"`
	OfflineSince string `json:"offline_since"`
}

// Since returns the timestamp of the active side of the state.
func (s ConnectivityState) Since() string {
	if s.IsOnline {
		return s.OnlineSince
	}
	return s.OfflineSince
}

// FormatTimestamp renders t in TimestampLayout using local time.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// ParseTimestamp parses a persisted timestamp. Empty input yields the zero time.
func ParseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(TimestampLayout, value, time.Local)
}

// Transition records a change of phase observed by the poller.
type Transition struct {
	From       Phase     `json:"from"`
	To         Phase     `json:"to"`
	At         time.Time `json:"at"`
	StatusCode int       `json:"status_code"`
	LatencyMs  int64     `json:"latency_ms,omitempty"`
}
