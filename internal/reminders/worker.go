package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/donglares/agendia-platform/internal/notify"
	"github.com/donglares/agendia-platform/internal/observability/metrics"
	"github.com/donglares/agendia-platform/internal/professionals"
	"github.com/donglares/agendia-platform/internal/schedule"
	"github.com/donglares/agendia-platform/pkg/logging"
)

// Config holds worker timing knobs.
type Config struct {
	// Lead is how far ahead of the start time a reminder goes out.
	Lead time.Duration
	// Interval is how often the worker scans for due reminders.
	Interval time.Duration
}

// DefaultConfig returns the stock reminder timings.
func DefaultConfig() Config {
	return Config{
		Lead:     2 * time.Hour,
		Interval: 5 * time.Minute,
	}
}

// Worker scans confirmed bookings and reminds clients ahead of their start
// time. The dedupe claim is taken before sending so parallel instances agree
// on a single sender; a send that fails after the claim is logged and
// dropped rather than duplicated.
type Worker struct {
	repo    professionals.Repository
	sender  notify.TextSender
	dedupe  DedupeStore
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
	config  Config
	now     func() time.Time
}

// NewWorker creates a reminder worker.
func NewWorker(repo professionals.Repository, sender notify.TextSender, dedupe DedupeStore, m *metrics.BookingMetrics, logger *logging.Logger, cfg Config) *Worker {
	if repo == nil {
		panic("reminders: repository required")
	}
	if dedupe == nil {
		panic("reminders: dedupe store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Lead <= 0 {
		cfg.Lead = DefaultConfig().Lead
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	return &Worker{
		repo:    repo,
		sender:  sender,
		dedupe:  dedupe,
		metrics: m,
		logger:  logger,
		config:  cfg,
		now:     time.Now,
	}
}

// Run ticks until the context is cancelled. Intended to be launched as a
// goroutine from main.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("reminder worker started",
		"lead", w.config.Lead.String(), "interval", w.config.Interval.String())
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reminder worker stopped")
			return
		case <-ticker.C:
			if _, err := w.ProcessDue(ctx); err != nil {
				w.logger.Error("reminder pass failed", "error", err)
			}
		}
	}
}

// ProcessDue sends reminders for confirmed bookings starting within the lead
// window. Returns the number of reminders sent.
func (w *Worker) ProcessDue(ctx context.Context) (int, error) {
	all, err := w.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("reminders: list professionals: %w", err)
	}

	now := w.now()
	horizon := now.Add(w.config.Lead)
	sent := 0
	for _, prof := range all {
		for _, b := range prof.Bookings {
			if !w.due(b, now, horizon) {
				continue
			}
			if err := w.remind(ctx, prof, b); err != nil {
				w.logger.Error("reminder failed",
					"booking_id", b.ID, "client_contact", b.ClientContact, "error", err)
				w.metrics.ObserveNotification("reminder", "failed")
				continue
			}
			sent++
		}
	}
	if sent > 0 {
		w.logger.Info("reminder pass complete", "sent", sent)
	}
	return sent, nil
}

func (w *Worker) due(b *schedule.Booking, now, horizon time.Time) bool {
	if b.Status != schedule.StatusConfirmed {
		return false
	}
	return !b.StartTime.Before(now) && !b.StartTime.After(horizon)
}

func (w *Worker) remind(ctx context.Context, prof *schedule.Professional, b *schedule.Booking) error {
	// Claim first so parallel instances pick one sender. TTL outlives the
	// booking start so the claim cannot lapse while still due.
	claimed, err := w.dedupe.MarkSent(ctx, b.ID, w.config.Lead*2)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	msg := fmt.Sprintf("Reminder: your booking for %q with %s starts at %s.",
		b.Service.Name, prof.Name, b.StartTime.Format("15:04"))
	if err := w.sender.SendText(ctx, b.ClientContact, msg); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}

	w.metrics.ObserveNotification("reminder", "sent")
	w.metrics.ObserveReminder()
	w.logger.Info("reminder sent", "booking_id", b.ID, "start_time", b.StartTime)
	return nil
}
