package schedule

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Professional is the aggregate root for a service provider. It owns the
// working-hours calendar, the catalog of offered services and every booking
// ever taken. All booking mutations go through the aggregate so the
// availability invariants hold at insertion time.
type Professional struct {
	ID              uuid.UUID    `json:"id"`
	Name            string       `json:"name"`
	ContactAddress  string       `json:"contact_address"`
	ServicesOffered []Service    `json:"services_offered"`
	Bookings        []*Booking   `json:"bookings"`
	WorkingHours    WorkingHours `json:"working_hours"`

	// Version stamps the aggregate for optimistic concurrency control on
	// save. Zero means the aggregate has never been persisted.
	Version int64 `json:"-"`
}

// NewProfessional builds an empty aggregate with a fresh id.
func NewProfessional(name, contactAddress string) (*Professional, error) {
	name = strings.TrimSpace(name)
	contactAddress = strings.TrimSpace(contactAddress)
	if name == "" {
		return nil, ErrMissingName
	}
	if contactAddress == "" {
		return nil, ErrMissingContact
	}
	return &Professional{
		ID:             uuid.New(),
		Name:           name,
		ContactAddress: contactAddress,
		WorkingHours:   WorkingHours{},
	}, nil
}

// AddService appends a service to the catalog. Names are unique within the
// catalog because bookings reference services by name.
func (p *Professional) AddService(svc Service) error {
	if svc.IsZero() {
		return ErrMissingService
	}
	if _, ok := p.FindService(svc.Name); ok {
		return ErrDuplicateService
	}
	p.ServicesOffered = append(p.ServicesOffered, svc)
	return nil
}

// FindService looks a service up by exact name.
func (p *Professional) FindService(name string) (Service, bool) {
	for _, svc := range p.ServicesOffered {
		if svc.Name == name {
			return svc, true
		}
	}
	return Service{}, false
}

// FindBooking looks a booking up by id.
func (p *Professional) FindBooking(id uuid.UUID) (*Booking, bool) {
	for _, b := range p.Bookings {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// IsAvailable reports whether a slot of the given duration starting at the
// given instant can be booked. The day must be open, the start's clock time
// must fall inside the day's window, and the slot must not overlap any
// confirmed booking. Only the start instant is checked against the window;
// a slot may run past closing time. Cancelled and completed bookings do not
// block the slot.
func (p *Professional) IsAvailable(start time.Time, durationMinutes int) bool {
	window, open := p.WorkingHours[start.Weekday()]
	if !open {
		return false
	}
	if !window.Contains(TimeOfDayFrom(start)) {
		return false
	}

	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	for _, b := range p.Bookings {
		if b.Status != StatusConfirmed {
			continue
		}
		if b.overlaps(start, end) {
			return false
		}
	}
	return true
}

// AddBooking appends a booking after re-checking availability. On failure the
// booking list is left untouched.
func (p *Professional) AddBooking(b *Booking) error {
	if !p.IsAvailable(b.StartTime, b.Service.DurationMinutes) {
		return ErrSlotUnavailable
	}
	p.Bookings = append(p.Bookings, b)
	return nil
}

// Clone deep-copies the aggregate. Repositories hand out clones so callers
// never share booking pointers with stored state.
func (p *Professional) Clone() *Professional {
	if p == nil {
		return nil
	}
	clone := &Professional{
		ID:             p.ID,
		Name:           p.Name,
		ContactAddress: p.ContactAddress,
		Version:        p.Version,
	}
	if p.ServicesOffered != nil {
		clone.ServicesOffered = append([]Service(nil), p.ServicesOffered...)
	}
	if p.Bookings != nil {
		clone.Bookings = make([]*Booking, len(p.Bookings))
		for i, b := range p.Bookings {
			copied := *b
			clone.Bookings[i] = &copied
		}
	}
	clone.WorkingHours = make(WorkingHours, len(p.WorkingHours))
	for day, window := range p.WorkingHours {
		clone.WorkingHours[day] = window
	}
	return clone
}
