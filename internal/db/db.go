package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	HashStore
	Sequencer
	IndexManager
	Aggregator
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	// HGetAll returns an empty map for a missing key.
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Sequencer hands out monotonically increasing numbers.
type Sequencer interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexInfo(ctx context.Context, name string) (*IndexInfo, error)
}

// Aggregator runs compiled query plans over an FT index.
type Aggregator interface {
	// Aggregate returns one sorted window of matching documents.
	Aggregate(ctx context.Context, q *AggregateQuery) (*SearchResult, error)
	// Count returns the number of matching documents.
	Count(ctx context.Context, q *CountQuery) (int, error)
}
