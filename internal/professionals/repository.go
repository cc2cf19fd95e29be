// Package professionals persists the professional aggregate. The aggregate is
// the unit of consistency: loads and saves always cover the whole object
// graph (catalog, working hours and bookings together).
package professionals

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/donglares/agendia-platform/internal/schedule"
)

// Repository defines the storage port for professional aggregates.
type Repository interface {
	// Save upserts the full aggregate and bumps its version stamp.
	Save(ctx context.Context, p *schedule.Professional) error
	// GetByID loads the full aggregate or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*schedule.Professional, error)
	// GetByContact looks a professional up by their own contact address.
	GetByContact(ctx context.Context, contact string) (*schedule.Professional, error)
	// List returns every professional aggregate.
	List(ctx context.Context) ([]*schedule.Professional, error)
}

// InMemoryRepository keeps aggregates in a mutex-guarded map. Used by tests
// and as the storage backend when no database is configured.
type InMemoryRepository struct {
	mu            sync.RWMutex
	professionals map[uuid.UUID]*schedule.Professional
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		professionals: make(map[uuid.UUID]*schedule.Professional),
	}
}

// Save stores a deep copy of the aggregate. The version check mirrors the
// optimistic concurrency contract of the Postgres implementation.
func (r *InMemoryRepository) Save(ctx context.Context, p *schedule.Professional) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.professionals {
		if id != p.ID && existing.ContactAddress == p.ContactAddress {
			return ErrDuplicateContact
		}
	}

	if existing, ok := r.professionals[p.ID]; ok {
		if existing.Version != p.Version {
			return ErrVersionConflict
		}
	} else if p.Version != 0 {
		return ErrVersionConflict
	}

	p.Version++
	r.professionals[p.ID] = p.Clone()
	return nil
}

// GetByID returns a deep copy of the aggregate.
func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*schedule.Professional, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.professionals[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

// GetByContact returns the professional whose own contact address matches.
func (r *InMemoryRepository) GetByContact(ctx context.Context, contact string) (*schedule.Professional, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.professionals {
		if p.ContactAddress == contact {
			return p.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// List returns deep copies of every stored aggregate.
func (r *InMemoryRepository) List(ctx context.Context) ([]*schedule.Professional, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*schedule.Professional, 0, len(r.professionals))
	for _, p := range r.professionals {
		out = append(out, p.Clone())
	}
	return out, nil
}

var _ Repository = (*InMemoryRepository)(nil)
