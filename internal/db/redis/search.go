package redis

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/recsearch/internal/db"
	"github.com/kailas-cloud/recsearch/internal/domain/search/plan"
)

// keyField is the pseudo-attribute FT.AGGREGATE LOAD uses for the document key.
const keyField = "__key"

// Aggregate lists one sorted window of a plan via FT.AGGREGATE.
// FT.SEARCH accepts a single SORTBY key, so multi-key ordering needs the aggregation pipeline.
func (s *Store) Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if err := db.CheckScoped(q.Plan); err != nil {
		return nil, err
	}
	if q.Offset < 0 {
		return nil, fmt.Errorf("offset must not be negative")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	args := []string{q.IndexName, renderQuery(q.Plan)}

	load := make([]string, 0, len(q.Load)+1)
	load = append(load, "@"+keyField)
	for _, f := range q.Load {
		load = append(load, "@"+f)
	}
	args = append(args, "LOAD", strconv.Itoa(len(load)))
	args = append(args, load...)

	if len(q.Sort) > 0 {
		args = append(args, "SORTBY", strconv.Itoa(2*len(q.Sort)))
		for _, k := range q.Sort {
			dir := "ASC"
			if k.Desc {
				dir = "DESC"
			}
			args = append(args, "@"+k.Path, dir)
		}
	}

	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	res, err := s.do(ctx, cmd)
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}
	raw, err := res.ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	return parseAggregateResult(raw)
}

// Count returns the number of documents a plan matches via FT.SEARCH with LIMIT 0 0.
func (s *Store) Count(ctx context.Context, q *db.CountQuery) (int, error) {
	if q.IndexName == "" {
		return 0, fmt.Errorf("index name is required")
	}
	if err := db.CheckScoped(q.Plan); err != nil {
		return 0, err
	}

	cmd := s.b().Arbitrary("FT.SEARCH").
		Args(q.IndexName, renderQuery(q.Plan), "LIMIT", "0", "0", "DIALECT", "2").
		Build()
	res, err := s.do(ctx, cmd)
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	raw, err := res.ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// --- Result parsing ---

// parseAggregateResult reads [total, row1, row2, ...] where each row is a flat
// field/value array carrying __key.
func parseAggregateResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	entries := make([]db.SearchEntry, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		row, err := raw[i].ToArray()
		if err != nil {
			continue
		}
		fields := parseFieldPairs(row)
		key := fields[keyField]
		if key == "" {
			continue
		}
		delete(fields, keyField)
		entries = append(entries, db.SearchEntry{Key: key, Fields: fields})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query rendering ---

// renderQuery renders a plan as a DIALECT 2 query string: search clauses,
// then match clauses, then the tenant clause, joined by spaces (AND).
func renderQuery(p *plan.Plan) string {
	parts := make([]string, 0, len(p.Search())+len(p.Match())+1)

	for _, c := range p.Search() {
		parts = append(parts, renderSearchClause(c))
	}
	for _, c := range p.Match() {
		parts = append(parts, renderMatchClause(c))
	}
	if scope, ok := p.Scope(); ok {
		parts = append(parts, buildTagFilter(scope.Path, scope.Key))
	}

	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

func renderSearchClause(c plan.SearchClause) string {
	if c.Mode == plan.Exact {
		return buildTagFilter(c.Path, c.Term)
	}
	infix := make([]string, 0, len(c.Tokens))
	for _, tok := range c.Tokens {
		infix = append(infix, "*"+escapeQuery(tok)+"*")
	}
	return fmt.Sprintf("@%s:(%s)", c.Path, strings.Join(infix, " "))
}

func renderMatchClause(c plan.MatchClause) string {
	if c.IsSet() {
		return buildTagSetFilter(c.Path, c.Values)
	}
	return buildNumericFilter(c.Path, *c.Range)
}

func buildTagFilter(key, value string) string {
	escaped := tagEscaper.Replace(value)
	return fmt.Sprintf("@%s:{%s}", key, escaped)
}

func buildTagSetFilter(key string, values []string) string {
	escaped := make([]string, 0, len(values))
	for _, v := range values {
		escaped = append(escaped, tagEscaper.Replace(v))
	}
	return fmt.Sprintf("@%s:{%s}", key, strings.Join(escaped, " | "))
}

func buildNumericFilter(key string, r plan.NumericRange) string {
	return fmt.Sprintf("@%s:[%s %s]", key, formatBound(r.Min, r.MinExclusive), formatBound(r.Max, r.MaxExclusive))
}

func formatBound(v float64, exclusive bool) string {
	switch {
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsInf(v, 1):
		return "+inf"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if exclusive {
		return "(" + s
	}
	return s
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	"?", "\\?",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
)
