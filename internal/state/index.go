// internal/state/index.go
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/user/tigerwatch/internal/types"
)

// SessionStore is a JSON-file-backed index of launch sessions.
// It stores index data in sessions/sessions.json and creates per-session
// directories at sessions/<sessionID>/.
type SessionStore struct {
	root string
	mu   sync.RWMutex
}

// NewSessionStore creates a file-backed SessionStore rooted at the given
// directory.
func NewSessionStore(root string) *SessionStore {
	return &SessionStore{root: root}
}

func (s *SessionStore) indexPath() string {
	return filepath.Join(s.root, "sessions", "sessions.json")
}

func (s *SessionStore) sessionsDir() string {
	return filepath.Join(s.root, "sessions")
}

func (s *SessionStore) sessionDir(id types.SessionID) string {
	return filepath.Join(s.root, "sessions", string(id))
}

// loadIndex reads sessions.json and returns a map keyed by SessionID.
func (s *SessionStore) loadIndex() (map[types.SessionID]*types.SessionRecord, error) {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[types.SessionID]*types.SessionRecord), nil
		}
		return nil, fmt.Errorf("read session index: %w", err)
	}

	var records []*types.SessionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal session index: %w", err)
	}

	index := make(map[types.SessionID]*types.SessionRecord, len(records))
	for _, rec := range records {
		index[rec.SessionID] = rec
	}
	return index, nil
}

// saveIndex converts the map to a slice, marshals with indentation, and
// writes atomically.
func (s *SessionStore) saveIndex(index map[types.SessionID]*types.SessionRecord) error {
	records := make([]*types.SessionRecord, 0, len(index))
	for _, rec := range index {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session index: %w", err)
	}

	if err := os.MkdirAll(s.sessionsDir(), 0o755); err != nil {
		return fmt.Errorf("create sessions dir: %w", err)
	}

	// Atomic write: write to temp file then rename
	tmp := s.indexPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp index: %w", err)
	}
	if err := os.Rename(tmp, s.indexPath()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp index: %w", err)
	}
	return nil
}

// Create persists a new session record. Returns an error if the ID exists.
func (s *SessionStore) Create(_ context.Context, record *types.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return err
	}

	if _, ok := index[record.SessionID]; ok {
		return fmt.Errorf("session already exists: %s", record.SessionID)
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.UpdatedAt = record.CreatedAt
	index[record.SessionID] = record

	if err := s.saveIndex(index); err != nil {
		return err
	}

	// Create session directory on demand
	if err := os.MkdirAll(s.sessionDir(record.SessionID), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return nil
}

// Get returns the record with the given ID.
func (s *SessionStore) Get(_ context.Context, id types.SessionID) (*types.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	if rec, ok := index[id]; ok {
		return rec, nil
	}
	return nil, fmt.Errorf("session not found: %s", id)
}

// List returns all session records, oldest first.
func (s *SessionStore) List(_ context.Context) ([]*types.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	records := make([]*types.SessionRecord, 0, len(index))
	for _, rec := range index {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

// Update persists changes to the given record, setting UpdatedAt to now.
func (s *SessionStore) Update(_ context.Context, record *types.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return err
	}

	if _, ok := index[record.SessionID]; !ok {
		return fmt.Errorf("session not found: %s", record.SessionID)
	}

	record.UpdatedAt = time.Now()
	index[record.SessionID] = record

	return s.saveIndex(index)
}
