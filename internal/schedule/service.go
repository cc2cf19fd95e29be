// Package schedule holds the appointment-booking domain: services, bookings
// and the professional aggregate that owns a calendar of working hours.
package schedule

import (
	"strings"
	"time"
)

// Service is an immutable descriptor of a bookable offering. Two services are
// equal when their fields are equal; catalogs look services up by exact name.
type Service struct {
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
}

// NewService validates and builds a Service.
func NewService(name string, durationMinutes int) (Service, error) {
	name = strings.TrimSpace(name)
	if len(name) < 3 {
		return Service{}, ErrServiceNameTooShort
	}
	if durationMinutes <= 0 {
		return Service{}, ErrInvalidDuration
	}
	return Service{Name: name, DurationMinutes: durationMinutes}, nil
}

// Duration returns the service length as a time.Duration.
func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// IsZero reports whether the service is the zero value.
func (s Service) IsZero() bool {
	return s.Name == "" && s.DurationMinutes == 0
}
