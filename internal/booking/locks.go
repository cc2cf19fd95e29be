package booking

import (
	"sync"

	"github.com/google/uuid"
)

// aggregateLocks serializes load-mutate-save cycles per professional so two
// booking requests for the same professional cannot interleave in-process.
// Cross-process races are caught by the repository's version check.
type aggregateLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newAggregateLocks() *aggregateLocks {
	return &aggregateLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the mutex for the given aggregate and returns its unlock
// function.
func (a *aggregateLocks) Lock(id uuid.UUID) func() {
	a.mu.Lock()
	l, ok := a.locks[id]
	if !ok {
		l = &sync.Mutex{}
		a.locks[id] = l
	}
	a.mu.Unlock()

	l.Lock()
	return l.Unlock
}
