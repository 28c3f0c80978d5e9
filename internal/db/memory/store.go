// Package memory is an in-process db.Store that evaluates query plans the
// way the Redis query engine does. It backs local runs and behavioural tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/recsearch/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

var errClosed = errors.New("memory store closed")

// Store keeps hashes, counters and index definitions in maps guarded by one lock.
type Store struct {
	mu       sync.RWMutex
	hashes   map[string]map[string]string
	counters map[string]int64
	indexes  map[string]*db.IndexDefinition
	closed   bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		hashes:   make(map[string]map[string]string),
		counters: make(map[string]int64),
		indexes:  make(map[string]*db.IndexDefinition),
	}
}

// Ping fails once the store is closed.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("ping: %w", errClosed)
	}
	return nil
}

// Close marks the store closed. Data is kept for inspection.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// WaitForReady returns immediately: an open memory store is always ready.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// --- hashes ---

// HSet merges fields into the hash at key.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	if err := s.check(ctx, db.OpHSet); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		s.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

// HGetAll returns a copy of the hash at key, or an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if err := s.check(ctx, db.OpHGetAll); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.hashes[key]
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out, nil
}

// HDel removes fields from the hash at key. An emptied hash is removed.
func (s *Store) HDel(ctx context.Context, key string, fields ...string) error {
	if err := s.check(ctx, db.OpHDel); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hashes[key]
	if !ok {
		return nil
	}
	for _, f := range fields {
		delete(h, f)
	}
	if len(h) == 0 {
		delete(s.hashes, key)
	}
	return nil
}

// Del removes key.
func (s *Store) Del(ctx context.Context, key string) error {
	if err := s.check(ctx, db.OpDel); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes, key)
	delete(s.counters, key)
	return nil
}

// Exists reports whether key holds a hash or a counter.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := s.check(ctx, db.OpExists); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.hashes[key]; ok {
		return true, nil
	}
	_, ok := s.counters[key]
	return ok, nil
}

// Incr increments the counter at key.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	if err := s.check(ctx, db.OpIncr); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hashes[key]; ok {
		return 0, &db.Error{Op: db.OpIncr, Err: errors.New("WRONGTYPE key holds a hash")}
	}
	s.counters[key]++
	return s.counters[key], nil
}

// --- indexes ---

// CreateIndex registers def. Hashes under its prefixes become searchable at once.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := s.check(ctx, db.OpCreateIndex); err != nil {
		return err
	}
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	cp := *def
	cp.Fields = append([]db.IndexField(nil), def.Fields...)
	cp.Prefixes = append([]string(nil), def.Prefixes...)
	s.indexes[def.Name] = &cp
	return nil
}

// DropIndex removes an index. Documents are kept.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	if err := s.check(ctx, db.OpDropIndex); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indexes[name]; !ok {
		return db.ErrIndexNotFound
	}
	delete(s.indexes, name)
	return nil
}

// IndexExists reports whether name is registered.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	if err := s.check(ctx, db.OpIndexInfo); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.indexes[name]
	return ok, nil
}

// IndexInfo reports the number of indexed hashes. Indexing is synchronous.
func (s *Store) IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error) {
	if err := s.check(ctx, db.OpIndexInfo); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[name]
	if !ok {
		return nil, db.ErrIndexNotFound
	}
	return &db.IndexInfo{Name: name, NumDocs: len(s.keysLocked(idx)), PercentIndexed: 1}, nil
}

// keysLocked returns the indexed keys in lexical order. Callers hold mu.
func (s *Store) keysLocked(idx *db.IndexDefinition) []string {
	keys := make([]string, 0, len(s.hashes))
	for k := range s.hashes {
		if covered(idx, k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func covered(idx *db.IndexDefinition, key string) bool {
	if len(idx.Prefixes) == 0 {
		return true
	}
	for _, p := range idx.Prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

func (s *Store) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return &db.Error{Op: op, Err: err}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &db.Error{Op: op, Err: errClosed}
	}
	return nil
}
