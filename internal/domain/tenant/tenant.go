// Package tenant resolves and carries the key that scopes every query.
package tenant

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/kailas-cloud/recsearch/internal/domain"
)

// DefaultPattern accepts submission ids like SUB123456.1.0 and captures the base number.
const DefaultPattern = `^(SUB[0-9]+)\.[0-9]+\.[0-9]+$`

// Key is the resolved tenant key (the submission base number).
type Key struct {
	value string
}

// NewKey creates a Key. Blank input is an unresolved tenant.
func NewKey(value string) (Key, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return Key{}, fmt.Errorf("%w: empty tenant key", domain.ErrUnresolvedTenant)
	}
	if strings.ContainsFunc(v, unicode.IsControl) {
		return Key{}, fmt.Errorf("%w: tenant key contains control characters", domain.ErrUnresolvedTenant)
	}
	return Key{value: v}, nil
}

// String returns the key value.
func (k Key) String() string { return k.value }

// IsZero reports whether the key is unset.
func (k Key) IsZero() bool { return k.value == "" }

// Resolver derives tenant keys from submission ids.
type Resolver struct {
	pattern *regexp.Regexp
}

// NewResolver compiles pattern. It must have exactly one capture group,
// which yields the key.
func NewResolver(pattern string) (*Resolver, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile tenant pattern: %w", err)
	}
	if re.NumSubexp() != 1 {
		return nil, fmt.Errorf("tenant pattern must have exactly one capture group, has %d", re.NumSubexp())
	}
	return &Resolver{pattern: re}, nil
}

// Resolve returns the tenant key embedded in submissionID.
func (r *Resolver) Resolve(submissionID string) (Key, error) {
	id := strings.TrimSpace(submissionID)
	if id == "" {
		return Key{}, fmt.Errorf("%w: missing submission id", domain.ErrUnresolvedTenant)
	}
	m := r.pattern.FindStringSubmatch(id)
	if m == nil {
		return Key{}, fmt.Errorf("%w: malformed submission id", domain.ErrUnresolvedTenant)
	}
	return NewKey(m[1])
}

type ctxKey struct{}

// ContextWithKey stores a resolved key in the context.
func ContextWithKey(ctx context.Context, k Key) context.Context {
	return context.WithValue(ctx, ctxKey{}, k)
}

// FromContext returns the key stored in ctx, or ErrUnresolvedTenant.
func FromContext(ctx context.Context) (Key, error) {
	k, ok := ctx.Value(ctxKey{}).(Key)
	if !ok || k.IsZero() {
		return Key{}, domain.ErrUnresolvedTenant
	}
	return k, nil
}
