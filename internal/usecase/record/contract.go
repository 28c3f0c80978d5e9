package record

import (
	"context"

	domrec "github.com/kailas-cloud/recsearch/internal/domain/record"
)

// Repository reads single records by id.
type Repository interface {
	Get(ctx context.Context, id string) (domrec.Record, error)
}
