package monitor

import (
	"time"

	"onlinewatch/internal/models"
)

// Persisted keys of the connectivity state.
const (
	KeyIsOnline     = "isOnline"
	KeyOnlineSince  = "onlineSince"
	KeyOfflineSince = "offlineSince"
)

// StateReader is the read side of the key/value store.
type StateReader interface {
	Get(key string) string
	GetBool(key string) bool
	Exists(key string) bool
}

// Store is the key/value store the poller owns the connectivity keys of.
type Store interface {
	StateReader
	Apply(values map[string]any) error
}

// ReadState returns the persisted connectivity snapshot.
func ReadState(s StateReader) models.ConnectivityState {
	return models.ConnectivityState{
		IsOnline:     s.GetBool(KeyIsOnline),
		OnlineSince:  s.Get(KeyOnlineSince),
		OfflineSince: s.Get(KeyOfflineSince),
	}
}

// PersistedPhase derives the tagged phase from the store. It is unknown until
// a cycle has written the online flag.
func PersistedPhase(s StateReader) models.Phase {
	if !s.Exists(KeyIsOnline) {
		return models.PhaseUnknown
	}
	if s.GetBool(KeyIsOnline) {
		return models.PhaseOnline
	}
	return models.PhaseOffline
}

// nextState applies a cycle outcome to the previous snapshot. A timestamp is
// written once when the state changes and kept on repeated cycles; the
// opposite timestamp is cleared.
func nextState(prev models.ConnectivityState, online bool, now time.Time) models.ConnectivityState {
	stamp := models.FormatTimestamp(now)
	next := models.ConnectivityState{IsOnline: online}
	if online {
		next.OnlineSince = prev.OnlineSince
		if !prev.IsOnline || prev.OnlineSince == "" {
			next.OnlineSince = stamp
		}
		return next
	}
	next.OfflineSince = prev.OfflineSince
	if prev.IsOnline || prev.OfflineSince == "" {
		next.OfflineSince = stamp
	}
	return next
}

func writeState(s Store, state models.ConnectivityState) error {
	return s.Apply(map[string]any{
		KeyIsOnline:     state.IsOnline,
		KeyOnlineSince:  state.OnlineSince,
		KeyOfflineSince: state.OfflineSince,
	})
}
