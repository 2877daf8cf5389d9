package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"
)

// Collections
const (
	CollectionRooms       = "rooms"
	CollectionQueue       = "queue"
	CollectionLeaderboard = "leaderboard"
	CollectionConfig      = "config"
)

// Key addresses one document
type Key struct {
	Collection string
	ID         string
}

func (k Key) String() string {
	return k.Collection + "/" + k.ID
}

// Backend persists raw JSON documents. Get returns (nil, nil) when the
// document does not exist.
type Backend interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Put(ctx context.Context, key Key, data []byte) error
	Delete(ctx context.Context, key Key) error
	List(ctx context.Context, collection string) ([]string, error)
	Close(ctx context.Context) error
}

// Store serializes access to documents per key on top of a Backend
type Store struct {
	backend Backend
	locks   *keyLocks
	logger  *zap.Logger
	verify  bool
}

type Option func(*Store)

// WithVerifyWrites re-reads every document after Update persists it
func WithVerifyWrites(on bool) Option {
	return func(s *Store) { s.verify = on }
}

// New creates a store over the given backend
func New(backend Backend, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		locks:   newKeyLocks(),
		logger:  logger,
		verify:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read decodes the document into dest. It reports false when absent.
func (s *Store) Read(ctx context.Context, key Key, dest any) (bool, error) {
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Write replaces the document under the key's lock
func (s *Store) Write(ctx context.Context, key Key, doc any) error {
	unlock, err := s.locks.acquire(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()
	_, err = s.put(ctx, key, doc)
	return err
}

// Delete removes the document under the key's lock
func (s *Store) Delete(ctx context.Context, key Key) error {
	unlock, err := s.locks.acquire(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// List returns the ids in a collection. Ids starting with "_" are reserved
// for lock documents and skipped.
func (s *Store) List(ctx context.Context, collection string) ([]string, error) {
	ids, err := s.backend.List(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	out := ids[:0]
	for _, id := range ids {
		if !strings.HasPrefix(id, "_") {
			out = append(out, id)
		}
	}
	return out, nil
}

// WithLock runs fn while holding the key's lock. The document itself is not
// touched, so a reserved key can guard work that spans several documents.
func (s *Store) WithLock(ctx context.Context, key Key, fn func(ctx context.Context) error) error {
	unlock, err := s.locks.acquire(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()
	return fn(ctx)
}

// Close releases the backend
func (s *Store) Close(ctx context.Context) error {
	return s.backend.Close(ctx)
}

func (s *Store) put(ctx context.Context, key Key, doc any) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Put(ctx, key, data); err != nil {
		return nil, fmt.Errorf("write %s: %w", key, err)
	}
	return data, nil
}

// Update runs a read-modify-write of one document under its lock. fn gets
// nil when the document does not exist. Returning nil deletes it; returning
// an error leaves it untouched.
func Update[T any](ctx context.Context, s *Store, key Key, fn func(cur *T) (*T, error)) (*T, error) {
	unlock, err := s.locks.acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var cur *T
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if data != nil {
		cur = new(T)
		if err := json.Unmarshal(data, cur); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
	}

	next, err := fn(cur)
	if err != nil {
		return nil, err
	}

	if next == nil {
		if err := s.backend.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("delete %s: %w", key, err)
		}
		return nil, nil
	}

	written, err := s.put(ctx, key, next)
	if err != nil {
		return nil, err
	}
	if s.verify {
		verifyWrite[T](ctx, s, key, written)
	}
	return next, nil
}

// verifyWrite compares the persisted document with what was written. A
// mismatch is logged; the caller keeps its in-memory value.
func verifyWrite[T any](ctx context.Context, s *Store, key Key, written []byte) {
	stored, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Error("write verification read failed", zap.String("key", key.String()), zap.Error(err))
		return
	}
	var want, got T
	if stored == nil || json.Unmarshal(written, &want) != nil || json.Unmarshal(stored, &got) != nil || !reflect.DeepEqual(want, got) {
		s.logger.Error("CRITICAL: persisted document does not match written value",
			zap.String("key", key.String()),
			zap.Int("writtenBytes", len(written)),
			zap.Int("storedBytes", len(stored)),
		)
	}
}
