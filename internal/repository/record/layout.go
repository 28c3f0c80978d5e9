package record

import "strings"

// Layout names the keys records live under for one key prefix.
type Layout struct {
	prefix string
}

// NewLayout creates a layout. An empty prefix keeps keys unprefixed.
func NewLayout(prefix string) Layout {
	return Layout{prefix: prefix}
}

// RecordPrefix is the key prefix the index covers.
func (l Layout) RecordPrefix() string { return l.prefix + "rec:" }

// RecordKey returns the hash key of record id.
func (l Layout) RecordKey(id string) string { return l.RecordPrefix() + id }

// IDFromKey strips the record prefix from a hash key.
func (l Layout) IDFromKey(key string) string { return strings.TrimPrefix(key, l.RecordPrefix()) }

// IndexName returns the search index name.
func (l Layout) IndexName() string { return l.prefix + "rec:idx" }

// SequenceKey returns the counter that hands out insertion sequence numbers.
// It sits outside the record prefix so no record id can collide with it.
func (l Layout) SequenceKey() string { return l.prefix + "seq:rec" }
