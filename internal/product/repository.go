package product

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Repository stores catalog products and their stock levels.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	GetByID(ctx context.Context, id int) (Product, error)
	ListByIDs(ctx context.Context, ids []int) ([]Product, error)
	SetStock(ctx context.Context, id, stock int) error
	// Reserve decrements stock for every change or for none of them.
	Reserve(ctx context.Context, changes []StockChange) error
	Release(ctx context.Context, changes []StockChange) error
	Seed(ctx context.Context, products []Product) error
}

// InMemoryRepository is the default catalog store.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage map[int]Product
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{storage: make(map[int]Product, len(seed))}
	for _, p := range seed {
		r.storage[p.ID] = p
	}
	return r
}

func matches(p Product, f Filter) bool {
	if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
		return false
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		return strings.Contains(strings.ToLower(p.Name), strings.ToLower(q))
	}
	return true
}

func (r *InMemoryRepository) List(_ context.Context, f Filter) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(r.storage))
	for _, p := range r.storage {
		if matches(p, f) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.storage[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

// ListByIDs returns the products that exist among ids; unknown ids are skipped.
func (r *InMemoryRepository) ListByIDs(_ context.Context, ids []int) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.storage[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) SetStock(_ context.Context, id, stock int) error {
	if stock < 0 {
		return ErrInvalidStock
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.storage[id]
	if !ok {
		return ErrNotFound
	}
	p.Stock = stock
	r.storage[id] = p
	return nil
}

func (r *InMemoryRepository) Reserve(_ context.Context, changes []StockChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// first pass validates the whole request against the summed demand
	need := make(map[int]int, len(changes))
	for _, c := range changes {
		need[c.ProductID] += c.Quantity
	}
	for id, qty := range need {
		p, ok := r.storage[id]
		if !ok {
			return fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		if p.Stock < qty {
			return fmt.Errorf("product %d: %w", id, ErrInsufficientStock)
		}
	}
	for id, qty := range need {
		p := r.storage[id]
		p.Stock -= qty
		r.storage[id] = p
	}
	return nil
}

func (r *InMemoryRepository) Release(_ context.Context, changes []StockChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range changes {
		p, ok := r.storage[c.ProductID]
		if !ok {
			continue
		}
		p.Stock += c.Quantity
		r.storage[c.ProductID] = p
	}
	return nil
}

// Seed inserts products whose id is not stored yet.
func (r *InMemoryRepository) Seed(_ context.Context, products []Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, ok := r.storage[p.ID]; !ok {
			r.storage[p.ID] = p
		}
	}
	return nil
}
