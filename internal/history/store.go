// Package history keeps a small on-disk record of finished build and
// install sessions in a bbolt database.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/atlanticdynamic/exebuild/internal/logsink"
	bolt "go.etcd.io/bbolt"
)

const (
	sessionsBucket = "sessions"
	openTimeout    = 3 * time.Second
)

var (
	ErrClosed   = errors.New("history store is closed")
	ErrNotFound = errors.New("session not found")
	ErrEmptyID  = errors.New("record has no session ID")
)

// Record is the persisted summary of one session.
type Record struct {
	ID         string             `json:"id"`
	Kind       string             `json:"kind"`
	Script     string             `json:"script,omitempty"`
	Command    string             `json:"command,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Status     logsink.StatusKind `json:"status"`
	ExitCode   int                `json:"exit_code"`
	Message    string             `json:"message,omitempty"`
}

// Duration is the wall time of the session.
func (r Record) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store is safe for concurrent use.
type Store struct {
	logger *slog.Logger

	mu sync.RWMutex
	db *bolt.DB
}

// DefaultPath returns the history database location under the user cache directory.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "exebuild", "history.db")
}

// Open opens or creates the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		logger: slog.Default().WithGroup("history.Store"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(sessionsBucket)); err != nil {
			return fmt.Errorf("create sessions bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s.db = db
	s.logger.Debug("History database opened", "path", path)
	return s, nil
}

// Record stores rec, replacing any record with the same ID. Session IDs
// are time-ordered, so key order is chronological.
func (s *Store) Record(rec Record) error {
	if rec.ID == "" {
		return ErrEmptyID
	}
	buf, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(sessionsBucket)).Put([]byte(rec.ID), buf)
	})
}

// Get returns the record for id.
func (s *Store) Get(id string) (Record, error) {
	var rec Record

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return rec, ErrClosed
	}
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(sessionsBucket)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &rec)
	})
	return rec, err
}

// List returns up to limit records, newest first. A limit of zero or
// less returns everything.
func (s *Store) List(limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	var out []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(sessionsBucket)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				s.logger.Warn("Skipping unreadable history record", "key", string(k), "error", err)
				continue
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

// Prune removes all but the newest keep records and returns how many were deleted.
func (s *Store) Prune(keep int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return 0, ErrClosed
	}

	deleted := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(sessionsBucket))
		var keys [][]byte
		if err := b.ForEach(func(k, _ []byte) error {
			keys = append(keys, append([]byte(nil), k...))
			return nil
		}); err != nil {
			return err
		}
		for i := 0; i < len(keys)-keep; i++ {
			if err := b.Delete(keys[i]); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	return deleted, err
}

// Close releases the database. Further calls return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}
	err := s.db.Close()
	s.db = nil
	return err
}
