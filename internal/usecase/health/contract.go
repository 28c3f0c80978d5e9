package health

import (
	"context"

	"github.com/kailas-cloud/recsearch/internal/db"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexInspector reports the build state of the search index.
type IndexInspector interface {
	IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error)
}
