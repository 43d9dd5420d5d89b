package order

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines persistence operations for orders.
type Repository interface {
	// Create stores o under a new id.
	Create(ctx context.Context, o Order) (Order, error)
	GetByID(ctx context.Context, id int) (Order, error)
	// List returns matching orders, newest first.
	List(ctx context.Context, f Filter) ([]Order, error)
	// UpdateStatus moves the order from `from` to `to` only if it is still in
	// `from`, returning ErrStatusConflict otherwise. A non-nil driverID is
	// stored with the change.
	UpdateStatus(ctx context.Context, id int, from, to Status, driverID *int, at time.Time) (Order, error)
	Seed(ctx context.Context, orders []Order) error
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	storage map[int]Order
	nextID  int
}

func NewInMemoryRepository(seed []Order) *InMemoryRepository {
	r := &InMemoryRepository{storage: make(map[int]Order), nextID: 1}
	for _, o := range seed {
		r.put(o)
	}
	return r
}

func (r *InMemoryRepository) put(o Order) {
	o.Lines = append([]Line(nil), o.Lines...)
	r.storage[o.ID] = o
	if o.ID >= r.nextID {
		r.nextID = o.ID + 1
	}
}

func clone(o Order) Order {
	o.Lines = append([]Line(nil), o.Lines...)
	if o.DriverID != nil {
		id := *o.DriverID
		o.DriverID = &id
	}
	return o
}

func (r *InMemoryRepository) Create(_ context.Context, o Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = r.nextID
	r.put(o)
	return clone(o), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.storage[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return clone(o), nil
}

func (r *InMemoryRepository) List(_ context.Context, f Filter) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0, len(r.storage))
	for _, o := range r.storage {
		if o.matches(f) {
			out = append(out, clone(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) UpdateStatus(_ context.Context, id int, from, to Status, driverID *int, at time.Time) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.storage[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	if o.Status != from {
		return Order{}, ErrStatusConflict
	}
	o.Status = to
	if driverID != nil {
		d := *driverID
		o.DriverID = &d
	}
	o.UpdatedAt = at
	r.storage[id] = o
	return clone(o), nil
}

func (r *InMemoryRepository) Seed(_ context.Context, orders []Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range orders {
		if _, ok := r.storage[o.ID]; !ok {
			r.put(o)
		}
	}
	return nil
}
