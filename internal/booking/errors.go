package booking

import "errors"

var (
	// ErrServiceNotOffered is returned when the requested service name is not
	// in the professional's catalog.
	ErrServiceNotOffered = errors.New("booking: service not offered by this professional")

	// ErrBookingNotFound is returned when no booking with the given id exists
	// on the aggregate.
	ErrBookingNotFound = errors.New("booking: booking not found")
)
