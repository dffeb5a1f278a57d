/*
errors.go - Centralized error types for the maintenance engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers (HTTP surface, schedulers) classify with errors.Is and the
  helpers at the bottom.

ERROR CATEGORIES:
  1. Input errors       - Validation, duplicate key, immutable key
  2. Lookup errors      - Record not found
  3. Persistence errors - Repository load/replace failures

PROPAGATION POLICY:
  Structural/input errors are always returned to the immediate caller.
  The single exception is an invalid date inside status derivation, which
  degrades to "absent" with a logged advisory (see status.go). Scheduler
  cycle errors are caught and logged inside the loop, never escalated.

USAGE:
  if errors.Is(err, maintenance.ErrDuplicateKey) {
      // insert conflict, collection unchanged
  }
*/
package maintenance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned when a required field is blank or a supplied
	// date fails the fixed wire format.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateKey is returned on insert when a record with the same key
	// already exists in the variant's collection.
	ErrDuplicateKey = errors.New("duplicate record key")

	// ErrNotFound is returned on update of a missing key. Delete of a missing
	// key is NOT an error; it reports false.
	ErrNotFound = errors.New("record not found")

	// ErrImmutableKey is returned when an update attempts to change the key.
	ErrImmutableKey = errors.New("record key is immutable")

	// ErrPersistence wraps repository load/replace failures. The failed call
	// is surfaced to its caller and not retried automatically.
	ErrPersistence = errors.New("persistence failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports which field failed and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// DuplicateKeyError reports the conflicting key.
type DuplicateKeyError struct {
	Variant Variant
	Key     string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %q in %s collection", e.Key, e.Variant)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateKey }

// PersistenceError wraps the underlying repository failure.
type PersistenceError struct {
	Op  string // "load" or "replace"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return ErrPersistence }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrImmutableKey)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
