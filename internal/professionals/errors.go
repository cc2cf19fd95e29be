package professionals

import "errors"

var (
	// ErrNotFound is returned when no professional matches the lookup.
	ErrNotFound = errors.New("professionals: professional not found")

	// ErrDuplicateContact is returned when a contact address is already taken
	// by another professional.
	ErrDuplicateContact = errors.New("professionals: contact address already in use")

	// ErrVersionConflict is returned when a save races a concurrent writer and
	// the stored aggregate version no longer matches.
	ErrVersionConflict = errors.New("professionals: aggregate version conflict")
)
