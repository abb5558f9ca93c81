package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the operation targeted a document that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrResourceUnavailable indicates the target resource cannot be claimed in its current state.
	ErrResourceUnavailable = errors.New("resource unavailable")
	// ErrInvariantViolation indicates the operation would break an always-true constraint.
	ErrInvariantViolation = errors.New("invariant violation")
)

// StoreError wraps a failure reported by the document store (transport, permission, quota).
// The domain layer treats it as opaque and passes it through unchanged.
type StoreError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	parts := make([]string, 0, 3)
	if op := strings.TrimSpace(e.Op); op != "" {
		parts = append(parts, op)
	}
	if coll := strings.TrimSpace(e.Collection); coll != "" {
		parts = append(parts, coll)
	}
	prefix := "store"
	if len(parts) > 0 {
		prefix = "store " + strings.Join(parts, " ")
	}
	if e.Err == nil {
		return prefix + ": unknown failure"
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// WrapStore returns err wrapped in a StoreError, or nil when err is nil.
// Errors that already carry a domain sentinel or a StoreError are returned untouched.
func WrapStore(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) || IsDomain(err) {
		return err
	}
	return &StoreError{Op: op, Collection: collection, Err: err}
}

// IsDomain reports whether err carries one of the domain sentinels.
func IsDomain(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrResourceUnavailable) || errors.Is(err, ErrInvariantViolation)
}

// NotFound builds an ErrNotFound describing the missing entity.
func NotFound(entity, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, strings.TrimSpace(id))
}
