package reminders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/donglares/agendia-platform/internal/professionals"
	"github.com/donglares/agendia-platform/internal/schedule"
)

type captureSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (c *captureSender) SendText(_ context.Context, to, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, to+": "+body)
	return nil
}

func newRedisStore(t *testing.T) DedupeStore {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisDedupeStore(client)
}

// seedRepo stores a professional with a single confirmed booking at start.
func seedRepo(t *testing.T, repo professionals.Repository, start time.Time) *schedule.Booking {
	t.Helper()
	p, err := schedule.NewProfessional("Dr. Fulano", "+5583988807803")
	if err != nil {
		t.Fatalf("NewProfessional: %v", err)
	}
	window, err := schedule.NewWindow("00:00", "23:59")
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		p.WorkingHours[d] = window
	}
	svc, err := schedule.NewService("Haircut", 30)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if err := p.AddService(svc); err != nil {
		t.Fatalf("AddService: %v", err)
	}
	b, err := schedule.NewBooking(svc, start, "+5583999990000")
	if err != nil {
		t.Fatalf("NewBooking: %v", err)
	}
	if err := p.AddBooking(b); err != nil {
		t.Fatalf("AddBooking: %v", err)
	}
	if err := repo.Save(context.Background(), p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return b
}

func newTestWorker(t *testing.T, repo professionals.Repository, sender *captureSender, now time.Time) *Worker {
	t.Helper()
	w := NewWorker(repo, sender, newRedisStore(t), nil, nil, Config{Lead: 2 * time.Hour, Interval: time.Minute})
	w.now = func() time.Time { return now }
	return w
}

func TestProcessDueSendsWithinLead(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	repo := professionals.NewInMemoryRepository()
	seedRepo(t, repo, now.Add(90*time.Minute))
	sender := &captureSender{}
	w := newTestWorker(t, repo, sender, now)

	sent, err := w.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if sent != 1 || len(sender.sent) != 1 {
		t.Fatalf("sent = %d, notifications = %d, want 1 each", sent, len(sender.sent))
	}
}

func TestProcessDueSkipsOutsideLead(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	repo := professionals.NewInMemoryRepository()
	seedRepo(t, repo, now.Add(5*time.Hour))
	sender := &captureSender{}
	w := newTestWorker(t, repo, sender, now)

	if sent, _ := w.ProcessDue(context.Background()); sent != 0 {
		t.Errorf("sent = %d, want 0 for a booking beyond the lead window", sent)
	}
}

func TestProcessDueSkipsPastBookings(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	repo := professionals.NewInMemoryRepository()
	seedRepo(t, repo, now.Add(-30*time.Minute))
	sender := &captureSender{}
	w := newTestWorker(t, repo, sender, now)

	if sent, _ := w.ProcessDue(context.Background()); sent != 0 {
		t.Errorf("sent = %d, want 0 for an already-started booking", sent)
	}
}

func TestProcessDueSkipsCancelled(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	repo := professionals.NewInMemoryRepository()
	b := seedRepo(t, repo, now.Add(time.Hour))

	prof, err := repo.GetByContact(context.Background(), "+5583988807803")
	if err != nil {
		t.Fatalf("GetByContact: %v", err)
	}
	stored, ok := prof.FindBooking(b.ID)
	if !ok {
		t.Fatal("booking missing from stored aggregate")
	}
	if err := stored.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if err := repo.Save(context.Background(), prof); err != nil {
		t.Fatalf("Save: %v", err)
	}

	sender := &captureSender{}
	w := newTestWorker(t, repo, sender, now)
	if sent, _ := w.ProcessDue(context.Background()); sent != 0 {
		t.Errorf("sent = %d, want 0 for a cancelled booking", sent)
	}
}

func TestProcessDueDedupesAcrossTicks(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	repo := professionals.NewInMemoryRepository()
	seedRepo(t, repo, now.Add(time.Hour))
	sender := &captureSender{}
	w := newTestWorker(t, repo, sender, now)

	for i := 0; i < 3; i++ {
		if _, err := w.ProcessDue(context.Background()); err != nil {
			t.Fatalf("ProcessDue tick %d: %v", i, err)
		}
	}
	if len(sender.sent) != 1 {
		t.Errorf("notifications = %d, want exactly 1 across ticks", len(sender.sent))
	}
}

func TestProcessDueSendFailureCountsNothing(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	repo := professionals.NewInMemoryRepository()
	seedRepo(t, repo, now.Add(time.Hour))
	sender := &captureSender{err: errors.New("bridge down")}
	w := newTestWorker(t, repo, sender, now)

	sent, err := w.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue must absorb per-booking send failures: %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0", sent)
	}
}

func TestRedisDedupeStoreClaimsOnce(t *testing.T) {
	store := newRedisStore(t)
	b, err := schedule.NewBooking(mustService(t), time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), "+55")
	if err != nil {
		t.Fatalf("NewBooking: %v", err)
	}

	first, err := store.MarkSent(context.Background(), b.ID, time.Hour)
	if err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	second, err := store.MarkSent(context.Background(), b.ID, time.Hour)
	if err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	if !first || second {
		t.Errorf("claims = (%v, %v), want (true, false)", first, second)
	}
}

func TestMemoryDedupeStoreClaimsOnce(t *testing.T) {
	store := NewMemoryDedupeStore()
	b, err := schedule.NewBooking(mustService(t), time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), "+55")
	if err != nil {
		t.Fatalf("NewBooking: %v", err)
	}

	first, _ := store.MarkSent(context.Background(), b.ID, time.Hour)
	second, _ := store.MarkSent(context.Background(), b.ID, time.Hour)
	if !first || second {
		t.Errorf("claims = (%v, %v), want (true, false)", first, second)
	}
}

func mustService(t *testing.T) schedule.Service {
	t.Helper()
	svc, err := schedule.NewService("Haircut", 30)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}
