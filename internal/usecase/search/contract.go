package search

import (
	"context"

	domrec "github.com/kailas-cloud/recsearch/internal/domain/record"
	"github.com/kailas-cloud/recsearch/internal/domain/search/plan"
	"github.com/kailas-cloud/recsearch/internal/domain/search/request"
)

// Repository executes compiled plans. List and Count must evaluate the same
// predicates; List orders deterministically and returns window w.
type Repository interface {
	List(ctx context.Context, p *plan.Plan, sort []request.SortKey, w request.Window) ([]domrec.Record, error)
	Count(ctx context.Context, p *plan.Plan) (int, error)
}
