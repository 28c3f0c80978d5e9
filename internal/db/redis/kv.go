package redis

import (
	"context"

	"github.com/kailas-cloud/recsearch/internal/db"
)

// Incr atomically increments key and returns the new value.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	cmd := s.b().Incr().Key(key).Build()
	res, err := s.do(ctx, cmd)
	if err != nil {
		return 0, &db.Error{Op: db.OpIncr, Err: err}
	}
	n, err := res.AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpIncr, Err: err}
	}
	return n, nil
}
