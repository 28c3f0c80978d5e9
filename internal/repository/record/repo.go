package record

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/recsearch/internal/db"
	"github.com/kailas-cloud/recsearch/internal/domain"
	domrec "github.com/kailas-cloud/recsearch/internal/domain/record"
)

// store is the consumer interface for records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Repo stores recommendation records as hashes.
type Repo struct {
	store  store
	layout Layout
}

// New creates a record repository.
func New(s store, l Layout) *Repo {
	return &Repo{store: s, layout: l}
}

// EnsureIndex creates the search index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	err := r.store.CreateIndex(ctx, BuildIndex(r.layout))
	if err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", r.layout.IndexName(), err)
	}
	return nil
}

// Save writes rec. A new record draws the next insertion sequence number;
// an existing one keeps its own so its position in orderings is stable.
// Attributes the new version no longer carries are removed.
// Returns the stored record and whether it was created.
func (r *Repo) Save(ctx context.Context, rec domrec.Record) (domrec.Record, bool, error) {
	if err := rec.Validate(); err != nil {
		return domrec.Record{}, false, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	key := r.layout.RecordKey(rec.ID)

	current, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domrec.Record{}, false, fmt.Errorf("hgetall %s: %w", key, err)
	}

	created := len(current) == 0
	if created {
		seq, err := r.store.Incr(ctx, r.layout.SequenceKey())
		if err != nil {
			return domrec.Record{}, false, fmt.Errorf("next sequence: %w", err)
		}
		rec.Seq = seq
	} else {
		seq, err := strconv.ParseInt(current[domrec.AttrSeq], 10, 64)
		if err != nil {
			return domrec.Record{}, false, fmt.Errorf("record %s has corrupt sequence %q", rec.ID, current[domrec.AttrSeq])
		}
		rec.Seq = seq
	}

	fields := ToHash(&rec)
	var stale []string
	for k := range current {
		if _, ok := fields[k]; !ok {
			stale = append(stale, k)
		}
	}

	if err := r.store.HSet(ctx, key, fields); err != nil {
		return domrec.Record{}, false, fmt.Errorf("hset %s: %w", key, err)
	}
	if err := r.store.HDel(ctx, key, stale...); err != nil {
		return domrec.Record{}, false, fmt.Errorf("hdel %s: %w", key, err)
	}
	return rec, created, nil
}

// Get returns the record with the given id. A missing record is
// domain.ErrNotFound; storage failures are lookup-stage storage errors.
func (r *Repo) Get(ctx context.Context, id string) (domrec.Record, error) {
	key := r.layout.RecordKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domrec.Record{}, domain.NewStorageError(domain.StageLookup, fmt.Errorf("hgetall %s: %w", key, err))
	}
	if len(m) == 0 {
		return domrec.Record{}, domain.ErrNotFound
	}
	return FromHash(id, m), nil
}
