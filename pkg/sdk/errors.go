package recsearch

import "github.com/kailas-cloud/recsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound           = domain.ErrNotFound
	ErrInvalidFilter      = domain.ErrInvalidFilter
	ErrInvalidRequest     = domain.ErrInvalidRequest
	ErrUnresolvedTenant   = domain.ErrUnresolvedTenant
	ErrStorageUnavailable = domain.ErrStorageUnavailable
	ErrStorageTimeout     = domain.ErrStorageTimeout
)
