// Package persist provides snapshot stores for session memory: a plain-file
// store (one directory per session) and a Badger-backed key-value store.
package persist

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/43xlabs/convo-go-sdk/memory"
)

// stateFile holds the serialized snapshot inside each session directory.
const stateFile = "state.json"

// FileStore persists one JSON state file per session under a base directory.
type FileStore struct {
	baseDir string
}

// NewFileStore creates the store rooted at baseDir, creating it if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Save writes the snapshot for a session, replacing any previous state.
func (s *FileStore) Save(sessionID string, snap *memory.Snapshot) error {
	dir := filepath.Join(s.baseDir, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	path := filepath.Join(dir, stateFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	log.Printf("[PERSIST] Saved snapshot for session %s (%d bytes)", sessionID, len(data))
	return nil
}

// Load reads a session's snapshot. A session that was never saved returns
// (nil, nil).
func (s *FileStore) Load(sessionID string) (*memory.Snapshot, error) {
	path := filepath.Join(s.baseDir, sessionID, stateFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap memory.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Clear deletes a session's persisted state. Missing state is a no-op.
func (s *FileStore) Clear(sessionID string) error {
	err := os.RemoveAll(filepath.Join(s.baseDir, sessionID))
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
