package redis

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/recsearch/internal/db"
)

// CreateIndex creates an FT index from the given definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.doErr(ctx, cmd); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex removes an FT index by name. Documents are kept.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()
	if err := s.doErr(ctx, cmd); err != nil {
		if isRedisErr(err, "unknown index name") {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	return nil
}

// IndexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.doErr(ctx, cmd); err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

// IndexInfo reads document count and background indexing state via FT.INFO.
func (s *Store) IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	res, err := s.do(ctx, cmd)
	if err != nil {
		return nil, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	raw, err := res.ToArray()
	if err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return parseIndexInfo(name, raw), nil
}

// parseIndexInfo reads the flat key/value FT.INFO reply. Unknown keys are skipped.
func parseIndexInfo(name string, raw []rueidis.RedisMessage) *db.IndexInfo {
	info := &db.IndexInfo{Name: name, PercentIndexed: 1}
	for i := 0; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		v := raw[i+1]
		switch key {
		case "num_docs":
			if n, err := v.AsInt64(); err == nil {
				info.NumDocs = int(n)
			}
		case "indexing":
			if n, err := v.AsInt64(); err == nil {
				info.Indexing = n != 0
			}
		case "percent_indexed":
			if f, err := v.AsFloat64(); err == nil {
				info.PercentIndexed = f
			}
		}
	}
	return info
}

func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if idx.Name == "" {
		return nil, errors.New("index name is required")
	}
	if len(idx.Fields) == 0 {
		return nil, errors.New("at least one field is required")
	}

	args := []string{idx.Name}

	storage := idx.StorageType
	if storage == "" {
		storage = db.StorageHash
	}
	args = append(args, "ON", string(storage))

	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}

	if idx.NoStopWords {
		args = append(args, "STOPWORDS", "0")
	}

	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		fieldArgs, err := buildFieldArgs(&idx.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}

	return args, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	args := []string{f.Name}

	if f.Alias != "" {
		args = append(args, "AS", f.Alias)
	}

	switch f.Type {
	case db.IndexFieldNumeric:
		args = append(args, "NUMERIC")

	case db.IndexFieldText:
		args = append(args, "TEXT")
		if f.WithSuffixTrie {
			args = append(args, "WITHSUFFIXTRIE")
		}

	case db.IndexFieldTag:
		args = append(args, "TAG")
		if f.TagSeparator != "" {
			args = append(args, "SEPARATOR", f.TagSeparator)
		}
		if f.TagCaseSensitive {
			args = append(args, "CASESENSITIVE")
		}
		if f.WithSuffixTrie {
			args = append(args, "WITHSUFFIXTRIE")
		}

	default:
		return nil, errors.New("unknown field type " + strings.ToLower(f.Type.String()))
	}

	if f.Sortable {
		args = append(args, "SORTABLE")
	}

	return args, nil
}
