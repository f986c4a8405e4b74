package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/43xlabs/convo-go-sdk/memory"
)

// BadgerStore persists snapshots in an embedded Badger key-value database,
// keyed "snapshot/<sessionID>". Suits deployments with many sessions where
// one-file-per-session churn is unwanted.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) the database at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logger is too chatty for a library
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStoreInMemory opens a database that lives only in process memory.
// Used by tests and ephemeral deployments.
func NewBadgerStoreInMemory() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func snapshotKey(sessionID string) []byte {
	return []byte("snapshot/" + sessionID)
}

// Save writes the snapshot, replacing any previous value.
func (s *BadgerStore) Save(sessionID string, snap *memory.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey(sessionID), data)
	})
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	log.Printf("[PERSIST] Saved snapshot for session %s (%d bytes)", sessionID, len(data))
	return nil
}

// Load reads a session's snapshot. A session that was never saved returns
// (nil, nil).
func (s *BadgerStore) Load(sessionID string) (*memory.Snapshot, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(sessionID))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
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
func (s *BadgerStore) Clear(sessionID string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(snapshotKey(sessionID))
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
