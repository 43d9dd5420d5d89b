package category

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("category not found")

// Repository provides access to category rows.
type Repository interface {
	List(ctx context.Context, limit int) ([]Category, error)
	GetByID(ctx context.Context, id int) (Category, error)
	Seed(ctx context.Context, categories []Category) error
}

// InMemoryRepository keeps categories in insertion order.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Category
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	r := &InMemoryRepository{storage: make([]Category, 0, len(seed))}
	r.storage = append(r.storage, seed...)
	return r
}

func (r *InMemoryRepository) List(_ context.Context, limit int) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.storage)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Category, n)
	copy(out, r.storage[:n])
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.storage {
		if c.ID == id {
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

// Seed adds categories whose id is not present yet.
func (r *InMemoryRepository) Seed(_ context.Context, categories []Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := make(map[int]struct{}, len(r.storage))
	for _, c := range r.storage {
		existing[c.ID] = struct{}{}
	}
	for _, c := range categories {
		if _, ok := existing[c.ID]; ok {
			continue
		}
		r.storage = append(r.storage, c)
	}
	return nil
}
