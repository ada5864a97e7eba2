// Package store keeps sealed element snapshots in a bbolt database, keyed
// by element id.
package store

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketSnapshot = "snapshot"

// ErrNoSnapshot is returned by Get when no snapshot is stored under an id.
var ErrNoSnapshot = errors.New("store: no snapshot")

// Store is a snapshot database. It is safe for concurrent use.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSnapshot))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores a snapshot under id, replacing any previous one.
func (s *Store) Put(id, snapshot string) error {
	if id == "" {
		return errors.New("store: empty id")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSnapshot)).Put([]byte(id), []byte(snapshot))
	})
}

// Get returns the snapshot stored under id.
func (s *Store) Get(id string) (string, error) {
	var snapshot string
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketSnapshot)).Get([]byte(id))
		if v == nil {
			return ErrNoSnapshot
		}
		snapshot = string(v)
		return nil
	})
	return snapshot, err
}

// Delete removes the snapshot stored under id. Deleting a missing id is not
// an error.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSnapshot)).Delete([]byte(id))
	})
}

// IDs returns the stored ids in key order.
func (s *Store) IDs() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSnapshot)).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}
