// Package bolt implements repository.Store on a single bbolt bucket.
//
// bbolt is an embedded, single-file B+tree store. It takes an exclusive file
// lock, so only one process can hold the database open at a time; the CLI
// and a running server cannot share one bolt file.
package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/sakif/skillswap/internal/repository"
)

const defaultBucket = "skillswap"

var _ repository.Store = (*Store)(nil)

// Store wraps a bbolt database and the bucket holding every key.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the bbolt file at path and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = defaultBucket
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("bolt: creating directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt: opening %s: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("bolt: creating bucket: %w", err)
	}

	return &Store{db: db, bucket: []byte(bucket)}, nil
}

// Load copies the value out of the read transaction; bbolt's slices are
// only valid until the transaction ends.
func (s *Store) Load(_ context.Context, key string) ([]byte, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, bolt.ErrDatabaseNotOpen
	}
	var (
		blob  []byte
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(s.bucket).Get([]byte(key)); v != nil {
			blob = make([]byte, len(v))
			copy(blob, v)
			found = true
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("bolt: loading %s: %w", key, err)
	}
	return blob, found, nil
}

func (s *Store) Save(_ context.Context, key string, blob []byte) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if blob == nil {
		blob = []byte{}
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), blob)
	})
	if err != nil {
		return fmt.Errorf("bolt: saving %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("bolt: removing %s: %w", key, err)
	}
	return nil
}

// Close releases the file lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
