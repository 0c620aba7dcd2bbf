package models

import "time"

const (
	// ConnectivityAction names the event published after every poll cycle.
	ConnectivityAction = "onlinewatch.CONNECTION_STATE_CHANGED"

	// IsOnlineExtra is the payload key carrying the boolean state.
	IsOnlineExtra = "isOnline"
)

// Event is a same-process broadcast with a single boolean payload.
type Event struct {
	Action   string    `json:"action"`
	IsOnline bool      `json:"isOnline"`
	At       time.Time `json:"at"`
}
