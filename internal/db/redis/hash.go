package redis

import (
	"context"

	"github.com/kailas-cloud/recsearch/internal/db"
)

// HSet sets hash fields.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	cmd := s.b().Hset().Key(key).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	if err := s.doErr(ctx, cmd.Build()); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HGetAll returns all fields of a hash.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	cmd := s.b().Hgetall().Key(key).Build()
	res, err := s.do(ctx, cmd)
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	m, err := res.AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return m, nil
}

// HDel removes fields from a hash. No fields is a no-op.
func (s *Store) HDel(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	cmd := s.b().Hdel().Key(key).Field(fields...).Build()
	if err := s.doErr(ctx, cmd); err != nil {
		return &db.Error{Op: db.OpHDel, Err: err}
	}
	return nil
}

// Del deletes a key.
func (s *Store) Del(ctx context.Context, key string) error {
	cmd := s.b().Del().Key(key).Build()
	if err := s.doErr(ctx, cmd); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Exists checks if a key exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	cmd := s.b().Exists().Key(key).Build()
	res, err := s.do(ctx, cmd)
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	count, err := res.AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return count > 0, nil
}
