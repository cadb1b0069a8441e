package entities

import "errors"

// Error taxonomy. Concrete errors wrap one of these so callers can branch
// with errors.Is.
var (
	// ErrValidation marks bad input: self-relationships, unknown types,
	// missing required person fields.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks an operation that targets an unknown edge or person.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a write that would duplicate an existing fact.
	ErrConflict = errors.New("conflict")

	// ErrNotParticipant is returned when a viewer is not an endpoint of the
	// edge being labeled.
	ErrNotParticipant = errors.New("viewer is not part of the relationship")
)
