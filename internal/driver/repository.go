package driver

import (
	"context"
	"sort"
	"sync"
)

type Repository interface {
	List(ctx context.Context) ([]Driver, error)
	GetByID(ctx context.Context, id int) (Driver, error)
	IncrementCompleted(ctx context.Context, id int) (Driver, error)
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	storage map[int]Driver
}

func NewInMemoryRepository(seed []Driver) *InMemoryRepository {
	r := &InMemoryRepository{storage: make(map[int]Driver, len(seed))}
	for _, d := range seed {
		r.storage[d.ID] = d
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context) ([]Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Driver, 0, len(r.storage))
	for _, d := range r.storage {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.storage[id]
	if !ok {
		return Driver{}, ErrNotFound
	}
	return d, nil
}

func (r *InMemoryRepository) IncrementCompleted(_ context.Context, id int) (Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.storage[id]
	if !ok {
		return Driver{}, ErrNotFound
	}
	d.CompletedDeliveries++
	r.storage[id] = d
	return d, nil
}
