package timekeeper

import (
	"context"
	"sync"
)

// Repository stores clocks. Lookups return (nil, nil) for a missing clock;
// the service layer turns that into a not-found error.
type Repository interface {
	Create(ctx context.Context, clock *Clock) error
	GetByID(ctx context.Context, id string) (*Clock, error)
	List(ctx context.Context) ([]*Clock, error)
	Delete(ctx context.Context, id string) error
}

// memoryRepository is the only Repository implementation: clock positions
// are live session state and are deliberately never persisted.
type memoryRepository struct {
	mu     sync.RWMutex
	clocks map[string]*Clock
}

// NewMemoryRepository creates an empty in-memory clock store.
func NewMemoryRepository() Repository {
	return &memoryRepository{clocks: make(map[string]*Clock)}
}

func (r *memoryRepository) Create(ctx context.Context, clock *Clock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clocks[clock.ID] = clock
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*Clock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clocks[id], nil
}

func (r *memoryRepository) List(ctx context.Context) ([]*Clock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Clock, 0, len(r.clocks))
	for _, c := range r.clocks {
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clocks, id)
	return nil
}
