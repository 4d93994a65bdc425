// Package httpcache provides a persistent HTTP response cache and a throttling
// round tripper for catalog API calls.
package httpcache

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/badger/v4"
)

// ErrStoreClosed is returned when the store is used after Close.
var ErrStoreClosed = errors.New("cache store is closed")

// Store is a key-value store with per-entry expiration.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent or expired.
	Get(key string) (value []byte, ok bool, err error)
	// Set stores value under key for ttl. A ttl <= 0 stores without expiration.
	Set(key string, value []byte, ttl time.Duration) error
	// Purge removes every entry.
	Purge() error
	// Close releases the store.
	Close() error
}

// BadgerStore implements Store on BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a disk-backed store in dir.
func OpenBadger(dir string) (*BadgerStore, error) {
	if dir == "" {
		return nil, errors.New("cache directory is required")
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open cache at %s", dir)
	}
	return &BadgerStore{db: db}, nil
}

// OpenMemory opens an in-memory store. Entries are lost on Close.
func OpenMemory() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open in-memory cache")
	}
	return &BadgerStore{db: db}, nil
}

// Get returns the value stored under key.
func (s *BadgerStore) Get(key string) ([]byte, bool, error) {
	if s.db.IsClosed() {
		return nil, false, ErrStoreClosed
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to read cache entry")
	}
	return value, true, nil
}

// Set stores value under key for ttl.
func (s *BadgerStore) Set(key string, value []byte, ttl time.Duration) error {
	if s.db.IsClosed() {
		return ErrStoreClosed
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return errors.Wrap(err, "failed to write cache entry")
	}
	return nil
}

// Purge removes every entry.
func (s *BadgerStore) Purge() error {
	if s.db.IsClosed() {
		return ErrStoreClosed
	}
	if err := s.db.DropAll(); err != nil {
		return errors.Wrap(err, "failed to purge cache")
	}
	return nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}
