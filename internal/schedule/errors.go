package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotUnavailable is returned when a requested slot falls outside
	// working hours or overlaps a confirmed booking.
	ErrSlotUnavailable = errors.New("schedule: slot unavailable for this service")

	// ErrServiceNameTooShort is returned when a service name has fewer than 3 characters.
	ErrServiceNameTooShort = errors.New("schedule: service name must have at least 3 characters")

	// ErrInvalidDuration is returned when a service duration is not positive.
	ErrInvalidDuration = errors.New("schedule: service duration must be positive")

	// ErrMissingService is returned when a booking is created without a service.
	ErrMissingService = errors.New("schedule: booking requires a service")

	// ErrMissingStartTime is returned when a booking is created without a start time.
	ErrMissingStartTime = errors.New("schedule: booking requires a start time")

	// ErrMissingName is returned when a professional is created without a name.
	ErrMissingName = errors.New("schedule: professional name is required")

	// ErrMissingContact is returned when a professional is created without a contact address.
	ErrMissingContact = errors.New("schedule: professional contact address is required")

	// ErrDuplicateService is returned when a service name already exists in the catalog.
	ErrDuplicateService = errors.New("schedule: service name already offered")
)

// InvalidTransitionError reports a booking status transition that is not allowed
// from the booking's current status.
type InvalidTransitionError struct {
	Action  string
	Current Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("schedule: cannot %s a booking with status %q", e.Action, e.Current)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}
