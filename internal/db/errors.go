package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
	// ErrUnscopedQuery rejects a query plan without a tenant clause.
	ErrUnscopedQuery = errors.New("db: query plan has no tenant scope")
	// ErrCircuitOpen is returned without contacting the server while the breaker is open.
	ErrCircuitOpen = errors.New("db: circuit breaker open")
)

// Op constants map to Redis command names for error context.
const (
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpAggregate   = "FT.AGGREGATE"
	OpDel         = "DEL"
	OpHGetAll     = "HGETALL"
	OpHSet        = "HSET"
	OpHDel        = "HDEL"
	OpExists      = "EXISTS"
	OpIncr        = "INCR"
	OpPing        = "PING"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
