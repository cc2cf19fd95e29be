// Package reminders sends upcoming-booking reminders to clients. A
// ticker-driven worker scans confirmed bookings starting inside a lead
// window; a redis-backed dedupe store keeps a reminder from being sent twice
// across ticks, restarts or instances.
package reminders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DedupeStore records which bookings have already been reminded.
type DedupeStore interface {
	// MarkSent claims the reminder for a booking. It returns true exactly
	// once per booking within the TTL; later calls return false.
	MarkSent(ctx context.Context, bookingID uuid.UUID, ttl time.Duration) (bool, error)
}

// RedisDedupeStore claims reminders with SETNX so concurrent workers agree on
// a single sender.
type RedisDedupeStore struct {
	client *redis.Client
}

// NewRedisDedupeStore creates a redis-backed dedupe store.
func NewRedisDedupeStore(client *redis.Client) *RedisDedupeStore {
	if client == nil {
		panic("reminders: redis client required")
	}
	return &RedisDedupeStore{client: client}
}

var _ DedupeStore = (*RedisDedupeStore)(nil)

// MarkSent claims the booking's reminder key.
func (s *RedisDedupeStore) MarkSent(ctx context.Context, bookingID uuid.UUID, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("reminders:sent:%s", bookingID)
	ok, err := s.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reminders: claim %s: %w", key, err)
	}
	return ok, nil
}

// memoryDedupeStore backs dev mode when no redis address is configured.
type memoryDedupeStore struct {
	mu   sync.Mutex
	sent map[uuid.UUID]time.Time
}

// NewMemoryDedupeStore creates an in-process dedupe store. It forgets claims
// on restart, so it only suits single-instance dev runs.
func NewMemoryDedupeStore() DedupeStore {
	return &memoryDedupeStore{sent: make(map[uuid.UUID]time.Time)}
}

func (s *memoryDedupeStore) MarkSent(_ context.Context, bookingID uuid.UUID, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if expiry, ok := s.sent[bookingID]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	s.sent[bookingID] = time.Now().Add(ttl)
	return true, nil
}
