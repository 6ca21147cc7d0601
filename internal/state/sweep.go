// internal/state/sweep.go
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sweep is a named recurring investigation launched on a schedule, e.g. a
// nightly facility-permit check. Notify is a delivery target for the
// completion notice ("telegram:<chat-id>").
type Sweep struct {
	Name     string   `json:"name"`
	Prompt   string   `json:"prompt"`
	Schedule string   `json:"schedule"`
	Tools    []string `json:"tools,omitempty"`
	Notify   string   `json:"notify,omitempty"`
	Enabled  bool     `json:"enabled"`
}

// SweepStore is a JSON-file-backed store for sweeps.
type SweepStore struct {
	path string
	mu   sync.RWMutex
}

// NewSweepStore creates a file-backed SweepStore at the given file path.
func NewSweepStore(path string) *SweepStore {
	return &SweepStore{path: path}
}

// Path returns the file path used by this store.
func (s *SweepStore) Path() string {
	return s.path
}

// List returns all sweeps. Returns an empty slice if the file doesn't exist.
func (s *SweepStore) List() ([]*Sweep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sweeps, err := s.load()
	if err != nil {
		return nil, err
	}
	if sweeps == nil {
		return []*Sweep{}, nil
	}
	return sweeps, nil
}

// Get finds a sweep by name. Returns an error if not found.
func (s *SweepStore) Get(name string) (*Sweep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sweeps, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, sweep := range sweeps {
		if sweep.Name == name {
			return sweep, nil
		}
	}
	return nil, fmt.Errorf("sweep not found: %s", name)
}

// Add appends a sweep. Returns an error if a sweep with the same name
// already exists.
func (s *SweepStore) Add(sweep *Sweep) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sweeps, err := s.load()
	if err != nil {
		return err
	}

	for _, existing := range sweeps {
		if existing.Name == sweep.Name {
			return fmt.Errorf("sweep already exists: %s", sweep.Name)
		}
	}

	sweeps = append(sweeps, sweep)
	return s.save(sweeps)
}

// Remove deletes a sweep by name. Returns an error if not found.
func (s *SweepStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sweeps, err := s.load()
	if err != nil {
		return err
	}

	for i, sweep := range sweeps {
		if sweep.Name == name {
			sweeps = append(sweeps[:i], sweeps[i+1:]...)
			return s.save(sweeps)
		}
	}
	return fmt.Errorf("sweep not found: %s", name)
}

// SetEnabled toggles the enabled flag for a sweep. Returns an error if not
// found.
func (s *SweepStore) SetEnabled(name string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sweeps, err := s.load()
	if err != nil {
		return err
	}

	for _, sweep := range sweeps {
		if sweep.Name == name {
			sweep.Enabled = enabled
			return s.save(sweeps)
		}
	}
	return fmt.Errorf("sweep not found: %s", name)
}

// load reads the JSON file and returns the sweep list. Returns nil if the
// file doesn't exist.
func (s *SweepStore) load() ([]*Sweep, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sweeps file: %w", err)
	}

	var sweeps []*Sweep
	if err := json.Unmarshal(data, &sweeps); err != nil {
		return nil, fmt.Errorf("unmarshal sweeps: %w", err)
	}
	return sweeps, nil
}

// save writes the sweep list to disk using atomic write (temp file + rename).
func (s *SweepStore) save(sweeps []*Sweep) error {
	data, err := json.MarshalIndent(sweeps, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sweeps: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sweeps dir: %w", err)
	}

	// Atomic write: write to temp file then rename
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp sweeps file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp sweeps file: %w", err)
	}
	return nil
}
