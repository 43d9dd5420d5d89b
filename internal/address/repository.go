package address

import (
	"context"
	"sync"
)

type Repository interface {
	List(ctx context.Context, userID int) ([]Address, error)
	Get(ctx context.Context, userID, addressID int) (Address, error)
	Add(ctx context.Context, a Address) (Address, error)
	Update(ctx context.Context, a Address) (Address, error)
	Delete(ctx context.Context, userID, addressID int) error
	Seed(ctx context.Context, addrs []Address) error
}

// InMemoryRepository keys addresses by owner.
type InMemoryRepository struct {
	mu     sync.RWMutex
	data   map[int][]Address
	nextID int
}

func NewInMemoryRepository(seed []Address) *InMemoryRepository {
	r := &InMemoryRepository{data: make(map[int][]Address), nextID: 1}
	for _, a := range seed {
		r.insert(a)
	}
	return r
}

func (r *InMemoryRepository) insert(a Address) {
	if a.IsDefault {
		r.clearDefault(a.UserID)
	}
	r.data[a.UserID] = append(r.data[a.UserID], a)
	if a.ID >= r.nextID {
		r.nextID = a.ID + 1
	}
}

func (r *InMemoryRepository) clearDefault(userID int) {
	for i := range r.data[userID] {
		r.data[userID][i].IsDefault = false
	}
}

func (r *InMemoryRepository) List(_ context.Context, userID int) ([]Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Address, len(r.data[userID]))
	copy(out, r.data[userID])
	return out, nil
}

func (r *InMemoryRepository) Get(_ context.Context, userID, addressID int) (Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.data[userID] {
		if a.ID == addressID {
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) Add(_ context.Context, a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextID
	if len(r.data[a.UserID]) == 0 {
		a.IsDefault = true
	}
	r.insert(a)
	return a, nil
}

func (r *InMemoryRepository) Update(_ context.Context, a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	addrs := r.data[a.UserID]
	for i := range addrs {
		if addrs[i].ID != a.ID {
			continue
		}
		if a.IsDefault {
			r.clearDefault(a.UserID)
		}
		addrs[i] = a
		return a, nil
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, userID, addressID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	addrs := r.data[userID]
	for i, a := range addrs {
		if a.ID == addressID {
			r.data[userID] = append(addrs[:i], addrs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Seed(_ context.Context, addrs []Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range addrs {
		exists := false
		for _, cur := range r.data[a.UserID] {
			if cur.ID == a.ID {
				exists = true
				break
			}
		}
		if !exists {
			r.insert(a)
		}
	}
	return nil
}
