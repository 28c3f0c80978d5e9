package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing record (or one outside the caller's tenant).
	ErrNotFound = errors.New("not found")
	// ErrInvalidFilter signals a filter entry that is not permitted for its field.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidRequest signals a malformed request outside the filter model (window, sort, id).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnresolvedTenant signals that no tenant key could be established for the caller.
	ErrUnresolvedTenant = errors.New("unresolved tenant")
	// ErrStorageUnavailable signals a failing or unreachable storage engine.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrStorageTimeout signals a storage call that exceeded its deadline.
	ErrStorageTimeout = errors.New("storage timeout")
)

// InvalidFilterError identifies the filter entry that was rejected.
type InvalidFilterError struct {
	Field    string
	Kind     string
	Operator string
	Reason   string
}

func (e *InvalidFilterError) Error() string {
	msg := fmt.Sprintf("%s: field %s kind %s", ErrInvalidFilter.Error(), e.Field, e.Kind)
	if e.Operator != "" {
		msg += " operator " + e.Operator
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidFilterError) Unwrap() error { return ErrInvalidFilter }

// NewInvalidFilter creates an invalid filter error.
func NewInvalidFilter(field, kind, operator, reason string) error {
	return &InvalidFilterError{Field: field, Kind: kind, Operator: operator, Reason: reason}
}

// Stage names the pipeline step a storage call belonged to.
type Stage string

// Pipeline stages.
const (
	// StageSearch is a list query carrying a search-relevance clause.
	StageSearch Stage = "search"
	// StageMatch is a list query made of match predicates only.
	StageMatch Stage = "match"
	StageCount Stage = "count"
	// StageLookup is a single-record fetch by id.
	StageLookup Stage = "lookup"
)

// StorageError wraps a storage failure with the stage it happened in.
// It matches ErrStorageTimeout or ErrStorageUnavailable, and the cause itself.
type StorageError struct {
	Stage Stage
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Stage, e.Err)
}

func (e *StorageError) Unwrap() []error {
	switch {
	case errors.Is(e.Err, context.Canceled):
		// caller gave up, the engine did not fail
		return []error{e.Err}
	case errors.Is(e.Err, context.DeadlineExceeded):
		return []error{ErrStorageTimeout, e.Err}
	default:
		return []error{ErrStorageUnavailable, e.Err}
	}
}

// NewStorageError wraps err for the given stage. A nil err stays nil.
func NewStorageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Stage: stage, Err: err}
}

// StageOf returns the stage of a storage error, or "" if err is not one.
func StageOf(err error) Stage {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
