package store

import (
	"encoding/json"
	"fmt"
	"os"
)

// PersistenceError reports a failure to load, decode, or save the store
// document.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s store document %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Load reads the whole store document from path. A nonexistent document is
// not an error: the caller gets a fresh default store. An unreadable or
// undecodable document is a *PersistenceError; the caller decides whether to
// degrade to a cold state.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, &PersistenceError{Op: "read", Path: path, Err: err}
	}

	s := New()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, &PersistenceError{Op: "decode", Path: path, Err: err}
	}
	if s.Sources == nil {
		s.Sources = make(map[string]*SourceState)
	}
	return s, nil
}

// Save writes the whole store document to path. Save failures are terminal
// for the run and must be surfaced to the operator.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "encode", Path: path, Err: err}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}
	return nil
}
