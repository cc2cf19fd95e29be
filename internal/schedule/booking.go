package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Booking is one reserved time interval for a client against a specific
// service. The service is copied at booking time, so later catalog edits do
// not change the captured duration. EndTime is derived once at construction
// and never recomputed.
type Booking struct {
	ID            uuid.UUID `json:"id"`
	Service       Service   `json:"service"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	ClientContact string    `json:"client_contact"`
	Status        Status    `json:"status"`
}

// NewBooking builds a confirmed booking with a fresh id. Bookings are only
// attached to a professional through Professional.AddBooking, which performs
// the availability check.
func NewBooking(svc Service, start time.Time, clientContact string) (*Booking, error) {
	if svc.IsZero() {
		return nil, ErrMissingService
	}
	if start.IsZero() {
		return nil, ErrMissingStartTime
	}
	return &Booking{
		ID:            uuid.New(),
		Service:       svc,
		StartTime:     start,
		EndTime:       start.Add(svc.Duration()),
		ClientContact: clientContact,
		Status:        StatusConfirmed,
	}, nil
}

// Cancel transitions the booking to cancelled. Cancelled and completed
// bookings cannot be cancelled again.
func (b *Booking) Cancel() error {
	if b.Status == StatusCancelled || b.Status == StatusCompleted {
		return &InvalidTransitionError{Action: "cancel", Current: b.Status}
	}
	b.Status = StatusCancelled
	return nil
}

// Complete transitions the booking to completed. Only confirmed bookings can
// be completed.
func (b *Booking) Complete() error {
	if b.Status != StatusConfirmed {
		return &InvalidTransitionError{Action: "complete", Current: b.Status}
	}
	b.Status = StatusCompleted
	return nil
}

// overlaps reports whether the half-open interval [start, end) intersects the
// booking's own interval. Adjacent intervals do not overlap.
func (b *Booking) overlaps(start, end time.Time) bool {
	lo := b.StartTime
	if start.After(lo) {
		lo = start
	}
	hi := b.EndTime
	if end.Before(hi) {
		hi = end
	}
	return lo.Before(hi)
}
