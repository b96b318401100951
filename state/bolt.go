package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DefaultBucket holds every pagesum key.
const DefaultBucket = "pagesum"

// BoltConfig configures a BoltStore.
type BoltConfig struct {
	// Path is the database file. Parent directories are created.
	Path string

	// Bucket defaults to DefaultBucket.
	Bucket string

	// Timeout bounds waiting for the file lock held by another process.
	// Zero means 1s.
	Timeout time.Duration
}

// BoltStore implements Store on a bbolt file, so preferences and cached
// summaries survive restarts.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
	closed atomic.Bool
}

var _ Store = (*BoltStore)(nil)

// NewBoltStore opens (or creates) the database at cfg.Path.
func NewBoltStore(cfg BoltConfig) (*BoltStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("bolt store: path is required")
	}
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
		return nil, fmt.Errorf("bolt store: create dir: %w", err)
	}

	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("bolt store: open %s: %w", cfg.Path, err)
	}

	bucket := []byte(cfg.Bucket)
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bolt store: create bucket: %w", err)
	}

	return &BoltStore{db: db, bucket: bucket}, nil
}

// DefaultPath returns ~/.config/pagesum/state.db.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "pagesum.db"
	}
	return filepath.Join(home, ".config", "pagesum", "state.db")
}

// Get retrieves a value by key.
func (s *BoltStore) Get(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}

	var val []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// bbolt memory is only valid inside the transaction
		val = make([]byte, len(v))
		copy(val, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Put stores a value.
func (s *BoltStore) Put(key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), value)
	})
}

// Delete removes a key.
func (s *BoltStore) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

// Keys returns all keys matching a pattern.
func (s *BoltStore) Keys(pattern string) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(k, _ []byte) error {
			if MatchPattern(pattern, string(k)) {
				keys = append(keys, string(k))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return sortedKeys(keys), nil
}

// Close closes the database file.
func (s *BoltStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
