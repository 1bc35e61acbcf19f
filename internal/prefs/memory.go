package prefs

import (
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Store for tests and the control-endpoint
// emulator. It applies the same schema rules as the durable backends.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMemoryStore returns an empty in-memory store; reads yield schema
// defaults until values are written.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]any),
	}
}

// Bool returns the stored boolean for key, or the schema default.
func (s *MemoryStore) Bool(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.values[key].(bool); ok {
		return b
	}
	return DefaultBool(key)
}

// SetBool updates a boolean preference.
func (s *MemoryStore) SetBool(key string, value bool) error {
	if err := checkKind(key, KindBool); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Int returns the stored integer for key, or the schema default.
func (s *MemoryStore) Int(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := coerceInt(s.values[key]); ok {
		return n
	}
	return DefaultInt(key)
}

// SetInt updates an integer-backed preference.
func (s *MemoryStore) SetInt(key string, value int) error {
	if err := checkKind(key, KindEnum); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// String returns the stored string for key, or the schema default.
func (s *MemoryStore) String(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if str, ok := s.values[key].(string); ok {
		return str
	}
	return DefaultString(key)
}

// SetString updates a string preference.
func (s *MemoryStore) SetString(key string, value string) error {
	if err := checkKind(key, KindString); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Snapshot returns every declared preference with defaults filled in.
func (s *MemoryStore) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFrom(s.values)
}

// Reset removes the stored value for key.
func (s *MemoryStore) Reset(key string) error {
	if _, ok := DefinitionFor(key); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// ResetAll removes every stored value.
func (s *MemoryStore) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]any)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
