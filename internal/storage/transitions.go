package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"onlinewatch/internal/models"
)

// DefaultMaxEntries bounds the transition history when no limit is configured.
const DefaultMaxEntries = 2048

// TransitionStorage persists connectivity phase changes to disk.
type TransitionStorage struct {
	mu         sync.RWMutex
	path       string
	maxEntries int
	history    []models.Transition
}

// NewTransitionStorage creates a storage instance and loads existing history if present.
func NewTransitionStorage(path string, maxEntries int) (*TransitionStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	s := &TransitionStorage{path: path, maxEntries: maxEntries}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Append adds a transition, trims the oldest entries beyond the limit and persists.
func (s *TransitionStorage) Append(t models.Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, t)
	if len(s.history) > s.maxEntries {
		s.history = append([]models.Transition(nil), s.history[len(s.history)-s.maxEntries:]...)
	}
	return s.persist()
}

// Latest returns the most recent transition if any.
func (s *TransitionStorage) Latest() (models.Transition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.history) == 0 {
		return models.Transition{}, false
	}
	return s.history[len(s.history)-1], true
}

// History returns a copy of the entire history.
func (s *TransitionStorage) History() []models.Transition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]models.Transition, len(s.history))
	copy(copied, s.history)
	return copied
}

// HistoryN returns at most limit of the newest transitions, oldest first.
func (s *TransitionStorage) HistoryN(limit int) []models.Transition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if limit > 0 && len(s.history) > limit {
		start = len(s.history) - limit
	}
	copied := make([]models.Transition, len(s.history)-start)
	copy(copied, s.history[start:])
	return copied
}

func (s *TransitionStorage) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.history = []models.Transition{}
			return nil
		}
		return fmt.Errorf("read transitions: %w", err)
	}

	if len(data) == 0 {
		s.history = []models.Transition{}
		return nil
	}

	var entries []models.Transition
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse transitions: %w", err)
	}
	if len(entries) > s.maxEntries {
		entries = entries[len(entries)-s.maxEntries:]
	}
	s.history = entries
	return nil
}

func (s *TransitionStorage) persist() error {
	bytes, err := json.MarshalIndent(s.history, "", "  ")
	if err != nil {
		return fmt.Errorf("encode transitions: %w", err)
	}

	tmpPath := fmt.Sprintf("%s.%d.tmp", s.path, time.Now().UnixNano())
	if err := os.WriteFile(tmpPath, bytes, 0o644); err != nil {
		return fmt.Errorf("write temp transitions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace transitions file: %w", err)
	}
	return nil
}
