/*
errors.go - Centralized error types for the scheduling engine

PURPOSE:
  All sentinel errors in one place for consistency and discoverability.
  Domain packages wrap these with structured errors carrying context.

ERROR CATEGORIES:
  1. Lookup errors - dangling ids (template, encounter, atom, pool entry)
  2. Validation errors - save-time invariant violations, bad ranges
  3. Interaction errors - malformed payloads, competing sessions

USAGE:
  if errors.Is(err, generic.ErrInvalidTemplate) {
      // surface the validation message to the composer
  }

SEE ALSO:
  - bento/errors.go: Structured domain errors wrapping these
  - api/handlers.go: Maps them to HTTP status codes
*/
package generic

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced record doesn't exist, and by
	// BlobStore.Get when the key has never been written.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateAtom is returned when an atom id is already in its catalog.
	ErrDuplicateAtom = errors.New("duplicate atom")

	// ErrInvalidAtom is returned for atoms with no id or an unknown kind.
	ErrInvalidAtom = errors.New("invalid atom")

	// ErrInvalidTemplate is returned when a template misses required parts.
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrInvalidRange is returned when end - start is below the minimum duration.
	ErrInvalidRange = errors.New("invalid time range")

	// ErrInvalidPayload is returned when a drag payload cannot be decoded.
	ErrInvalidPayload = errors.New("invalid drag payload")

	// ErrInvalidRecurrence is returned when a recurrence rule cannot be parsed.
	ErrInvalidRecurrence = errors.New("invalid recurrence rule")

	// ErrInteractionBusy is returned when a drag, resize or merge is already active.
	ErrInteractionBusy = errors.New("another interaction is in progress")

	// ErrNoSession is returned when a move/end/choice arrives without a session.
	ErrNoSession = errors.New("no active interaction session")
)

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTemplate) ||
		errors.Is(err, ErrInvalidAtom) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidPayload) ||
		errors.Is(err, ErrInvalidRecurrence)
}

// IsConflict returns true if the error reports a clash with existing state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateAtom) ||
		errors.Is(err, ErrInteractionBusy) ||
		errors.Is(err, ErrNoSession)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
