// Package prefs implements a flat, file-backed scalar key/value store.
// Keys carry no schema; a missing or mistyped key reads as the zero value
// and the last write wins.
package prefs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Store persists string, bool, long and int values to a JSON file.
type Store struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// Open loads the store at path, creating its directory if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure prefs directory: %w", err)
	}
	s := &Store{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the backing file, discarding in-memory values.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// SetString stores a string value.
func (s *Store) SetString(key, value string) error {
	return s.Apply(map[string]any{key: value})
}

// SetBool stores a boolean value.
func (s *Store) SetBool(key string, value bool) error {
	return s.Apply(map[string]any{key: value})
}

// SetLong stores a 64-bit integer value.
func (s *Store) SetLong(key string, value int64) error {
	return s.Apply(map[string]any{key: value})
}

// SetInt stores an integer value.
func (s *Store) SetInt(key string, value int) error {
	return s.Apply(map[string]any{key: int64(value)})
}

// SetStringDefault stores value only if key is absent. It reports whether a write happened.
func (s *Store) SetStringDefault(key, value string) (bool, error) {
	return s.setDefault(key, value)
}

// SetLongDefault stores value only if key is absent. It reports whether a write happened.
func (s *Store) SetLongDefault(key string, value int64) (bool, error) {
	return s.setDefault(key, value)
}

func (s *Store) setDefault(key string, value any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = value
	if err := s.persistLocked(); err != nil {
		delete(s.values, key)
		return false, err
	}
	return true, nil
}

// Apply writes several keys with a single file write. Supported value types
// are string, bool, int, int32 and int64.
func (s *Store) Apply(values map[string]any) error {
	normalized := make(map[string]any, len(values))
	for key, value := range values {
		if key == "" {
			return errors.New("prefs: empty key")
		}
		v, err := normalize(value)
		if err != nil {
			return fmt.Errorf("prefs: key %q: %w", key, err)
		}
		normalized[key] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := make(map[string]any, len(normalized))
	for key, value := range normalized {
		if old, ok := s.values[key]; ok {
			previous[key] = old
		}
		s.values[key] = value
	}
	if err := s.persistLocked(); err != nil {
		for key := range normalized {
			if old, ok := previous[key]; ok {
				s.values[key] = old
			} else {
				delete(s.values, key)
			}
		}
		return err
	}
	return nil
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.values[key]
	if !ok {
		return nil
	}
	delete(s.values, key)
	if err := s.persistLocked(); err != nil {
		s.values[key] = old
		return err
	}
	return nil
}

// Exists reports whether key has been written.
func (s *Store) Exists(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// Get returns the string value of key. Non-string values are formatted.
func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch v := s.values[key].(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// GetBool returns the boolean value of key, false when absent or not a bool.
func (s *Store) GetBool(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, _ := s.values[key].(bool)
	return v
}

// GetLong returns the integer value of key, 0 when absent or not a number.
func (s *Store) GetLong(key string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, _ := s.values[key].(int64)
	return v
}

// GetInt returns the integer value of key truncated to int.
func (s *Store) GetInt(key string) int {
	return int(s.GetLong(key))
}

// Keys returns all keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of all stored values.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func normalize(value any) (any, error) {
	switch v := value.(type) {
	case string, bool, int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.values = make(map[string]any)
			return nil
		}
		return fmt.Errorf("read prefs: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		s.values = make(map[string]any)
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	raw := make(map[string]any)
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("parse prefs: %w", err)
	}

	values := make(map[string]any, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string, bool:
			values[key] = v
		case json.Number:
			n, err := v.Int64()
			if err != nil {
				return fmt.Errorf("parse prefs: key %q: %w", key, err)
			}
			values[key] = n
		default:
			// nested values are not produced by this store; skip them
		}
	}
	s.values = values
	return nil
}

func (s *Store) persistLocked() error {
	bytes, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}

	tmpPath := fmt.Sprintf("%s.%d.tmp", s.path, time.Now().UnixNano())
	if err := os.WriteFile(tmpPath, bytes, 0o644); err != nil {
		return fmt.Errorf("write temp prefs: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace prefs file: %w", err)
	}
	return nil
}
