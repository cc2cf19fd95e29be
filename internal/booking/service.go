// Package booking orchestrates the booking use cases on top of the
// professional aggregate: taking a booking, querying a day's agenda and
// transitioning booking lifecycles.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/donglares/agendia-platform/internal/notify"
	"github.com/donglares/agendia-platform/internal/observability/metrics"
	"github.com/donglares/agendia-platform/internal/professionals"
	"github.com/donglares/agendia-platform/internal/schedule"
	"github.com/donglares/agendia-platform/pkg/logging"
)

var bookingTracer = otel.Tracer("agendia.internal.booking")

const defaultNotifyTimeout = 10 * time.Second

// saveAttempts bounds retries when an out-of-process writer wins the
// optimistic version check between our load and save.
const saveAttempts = 3

// BookRequest carries the input of the booking use case.
type BookRequest struct {
	ProfessionalID uuid.UUID
	ClientContact  string
	ServiceName    string
	StartTime      time.Time
}

// Service runs the booking use cases. Notification delivery is best-effort:
// once the aggregate is saved the booking stands, whatever happens to the
// confirmation message.
type Service struct {
	repo          professionals.Repository
	sender        notify.TextSender
	metrics       *metrics.BookingMetrics
	logger        *logging.Logger
	locks         *aggregateLocks
	notifyTimeout time.Duration
}

// NewService constructs a booking service.
func NewService(repo professionals.Repository, sender notify.TextSender, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("booking: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:          repo,
		sender:        sender,
		metrics:       m,
		logger:        logger,
		locks:         newAggregateLocks(),
		notifyTimeout: defaultNotifyTimeout,
	}
}

// Book validates the request against the professional's catalog and calendar,
// attaches the booking, persists the whole aggregate and sends a best-effort
// confirmation to the client.
func (s *Service) Book(ctx context.Context, req BookRequest) (*schedule.Booking, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("agendia.professional_id", req.ProfessionalID.String()),
		attribute.String("agendia.service", req.ServiceName),
	)
	started := time.Now()
	defer func() {
		s.metrics.ObserveBookingLatency(time.Since(started).Seconds())
	}()

	var created *schedule.Booking
	prof, err := s.mutate(ctx, req.ProfessionalID, func(p *schedule.Professional) error {
		svc, ok := p.FindService(req.ServiceName)
		if !ok {
			return fmt.Errorf("%w: %q", ErrServiceNotOffered, req.ServiceName)
		}
		b, err := schedule.NewBooking(svc, req.StartTime, req.ClientContact)
		if err != nil {
			return err
		}
		if err := p.AddBooking(b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, schedule.ErrSlotUnavailable):
			s.metrics.ObserveBooking("rejected")
		case errors.Is(err, professionals.ErrNotFound), errors.Is(err, ErrServiceNotOffered):
			s.metrics.ObserveBooking("not_found")
		default:
			s.metrics.ObserveBooking("error")
		}
		return nil, err
	}

	s.metrics.ObserveBooking("confirmed")
	s.logger.Info("booking confirmed",
		"professional_id", prof.ID,
		"booking_id", created.ID,
		"service", created.Service.Name,
		"start_time", created.StartTime,
	)

	s.sendConfirmation(ctx, prof, created)
	return created, nil
}

// DayAgenda returns the professional's bookings whose start falls on the
// given calendar date, ascending by start time. Cancelled and completed
// bookings are included.
func (s *Service) DayAgenda(ctx context.Context, professionalID uuid.UUID, day time.Time) ([]*schedule.Booking, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.day_agenda")
	defer span.End()
	span.SetAttributes(attribute.String("agendia.professional_id", professionalID.String()))

	prof, err := s.repo.GetByID(ctx, professionalID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	wantYear, wantMonth, wantDay := day.Date()
	var agenda []*schedule.Booking
	for _, b := range prof.Bookings {
		y, m, d := b.StartTime.Date()
		if y == wantYear && m == wantMonth && d == wantDay {
			agenda = append(agenda, b)
		}
	}
	sort.SliceStable(agenda, func(i, j int) bool {
		return agenda[i].StartTime.Before(agenda[j].StartTime)
	})
	return agenda, nil
}

// CancelBooking cancels one of the professional's bookings.
func (s *Service) CancelBooking(ctx context.Context, professionalID, bookingID uuid.UUID) (*schedule.Booking, error) {
	return s.transition(ctx, "booking.cancel", professionalID, bookingID, (*schedule.Booking).Cancel)
}

// CompleteBooking marks one of the professional's bookings as completed.
func (s *Service) CompleteBooking(ctx context.Context, professionalID, bookingID uuid.UUID) (*schedule.Booking, error) {
	return s.transition(ctx, "booking.complete", professionalID, bookingID, (*schedule.Booking).Complete)
}

func (s *Service) transition(ctx context.Context, spanName string, professionalID, bookingID uuid.UUID, apply func(*schedule.Booking) error) (*schedule.Booking, error) {
	ctx, span := bookingTracer.Start(ctx, spanName)
	defer span.End()
	span.SetAttributes(
		attribute.String("agendia.professional_id", professionalID.String()),
		attribute.String("agendia.booking_id", bookingID.String()),
	)

	var target *schedule.Booking
	_, err := s.mutate(ctx, professionalID, func(p *schedule.Professional) error {
		b, ok := p.FindBooking(bookingID)
		if !ok {
			return ErrBookingNotFound
		}
		if err := apply(b); err != nil {
			return err
		}
		target = b
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return target, nil
}

// mutate runs a load-mutate-save cycle under the aggregate's lock, retrying
// when a concurrent out-of-process save bumps the version first.
func (s *Service) mutate(ctx context.Context, professionalID uuid.UUID, apply func(*schedule.Professional) error) (*schedule.Professional, error) {
	unlock := s.locks.Lock(professionalID)
	defer unlock()

	var lastErr error
	for attempt := 0; attempt < saveAttempts; attempt++ {
		prof, err := s.repo.GetByID(ctx, professionalID)
		if err != nil {
			return nil, err
		}
		if err := apply(prof); err != nil {
			return nil, err
		}
		if err := s.repo.Save(ctx, prof); err != nil {
			if errors.Is(err, professionals.ErrVersionConflict) {
				lastErr = err
				s.logger.Warn("save lost version race, retrying",
					"professional_id", professionalID, "attempt", attempt+1)
				continue
			}
			return nil, err
		}
		return prof, nil
	}
	return nil, lastErr
}

// sendConfirmation builds and sends the confirmation message. Failures are
// logged and counted, never surfaced: the booking is already committed.
func (s *Service) sendConfirmation(ctx context.Context, prof *schedule.Professional, b *schedule.Booking) {
	if s.sender == nil {
		return
	}
	// The booking commit must not be held hostage by a slow channel, and an
	// aborted request must not cancel a message for a committed booking.
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	msg := fmt.Sprintf("Hi! Your booking for %q with %s is confirmed for %s.",
		b.Service.Name, prof.Name, b.StartTime.Format("02/01/2006 at 15:04"))

	if err := s.sender.SendText(nctx, b.ClientContact, msg); err != nil {
		s.metrics.ObserveNotification("confirmation", "failed")
		s.logger.Error("booking saved but confirmation failed",
			"booking_id", b.ID, "client_contact", b.ClientContact, "error", err)
		return
	}
	s.metrics.ObserveNotification("confirmation", "sent")
}
