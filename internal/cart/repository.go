package cart

import (
	"context"
	"sync"
)

type Repository interface {
	// Get returns an empty cart when userID has none stored.
	Get(ctx context.Context, userID int) (Cart, error)
	Save(ctx context.Context, c Cart) error
	Delete(ctx context.Context, userID int) error
}

type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[int]Cart
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{carts: make(map[int]Cart)}
}

func (r *InMemoryRepository) Get(_ context.Context, userID int) (Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.carts[userID]
	if !ok {
		return Cart{UserID: userID, Lines: []Line{}}, nil
	}
	c.Lines = append([]Line(nil), c.Lines...)
	return c, nil
}

func (r *InMemoryRepository) Save(_ context.Context, c Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.Lines = append([]Line(nil), c.Lines...)
	r.carts[c.UserID] = c
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}
