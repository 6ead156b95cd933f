// Package pebbledoc provides a pool connector for read sessions over an
// embedded pebble-backed document store. The store itself is shared; each
// pooled "connection" is a consistent snapshot session, so a bounded number
// of long-lived snapshots can be reused instead of being created per read.
package pebbledoc

import (
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("pebbledoc: document not found")

// healthKey is probed by CheckHealth; it is never written, so a NotFound
// answer proves the snapshot is readable.
var healthKey = []byte("!pebbledoc/health")

// Store wraps one pebble database holding documents. Close the pool of
// sessions before closing the store.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) a document store at path. opts may be nil; tests
// pass an in-memory filesystem through it.
func Open(path string, opts *pebble.Options) (*Store, error) {
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	return &Store{db: db}, nil
}

// Put writes a document.
func (s *Store) Put(key, value []byte) error {
	return s.db.Set(key, value, pebble.Sync)
}

// Delete removes a document.
func (s *Store) Delete(key []byte) error {
	return s.db.Delete(key, pebble.Sync)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Session is one pooled read session pinned to a snapshot of the store.
type Session struct {
	snap   *pebble.Snapshot
	closed bool
}

// Get reads a document as of the session's snapshot. The returned slice is
// a copy and stays valid after the session is released.
func (s *Session) Get(key []byte) ([]byte, error) {
	value, closer, err := s.snap.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session get: %w", err)
	}
	defer closer.Close()

	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

// Connector implements the pool lifecycle hooks for *Session.
type Connector struct {
	store *Store
}

// NewConnector creates a connector producing sessions over the store.
func NewConnector(store *Store) *Connector {
	return &Connector{store: store}
}

// Connect opens a new snapshot session.
func (c *Connector) Connect(ctx context.Context) (*Session, error) {
	return &Session{snap: c.store.db.NewSnapshot()}, nil
}

// CheckHealth reads the probe key; NotFound proves the snapshot is still
// readable.
func (c *Connector) CheckHealth(ctx context.Context, sess *Session) error {
	_, err := sess.Get(healthKey)
	if err == nil || errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// Close releases the session's snapshot. Safe to call more than once.
func (c *Connector) Close(sess *Session) {
	if sess.closed {
		return
	}
	sess.closed = true
	_ = sess.snap.Close()
}
