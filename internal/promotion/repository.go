package promotion

import (
	"context"
	"sort"
	"sync"
)

type Repository interface {
	List(ctx context.Context) ([]Promotion, error)
	GetByID(ctx context.Context, id int) (Promotion, error)
	// GetByCode expects an already normalized code.
	GetByCode(ctx context.Context, code string) (Promotion, error)
	Create(ctx context.Context, p Promotion) (Promotion, error)
	Update(ctx context.Context, p Promotion) (Promotion, error)
	Delete(ctx context.Context, id int) error
	Seed(ctx context.Context, promos []Promotion) error
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	storage map[int]Promotion
	nextID  int
}

func NewInMemoryRepository(seed []Promotion) *InMemoryRepository {
	r := &InMemoryRepository{storage: make(map[int]Promotion), nextID: 1}
	for _, p := range seed {
		r.put(p)
	}
	return r
}

func (r *InMemoryRepository) put(p Promotion) {
	p.Code = NormalizeCode(p.Code)
	r.storage[p.ID] = p
	if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
}

func (r *InMemoryRepository) codeTaken(code string, exceptID int) bool {
	for _, p := range r.storage {
		if p.Code == code && p.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) List(_ context.Context) ([]Promotion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Promotion, 0, len(r.storage))
	for _, p := range r.storage {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Promotion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.storage[id]
	if !ok {
		return Promotion{}, ErrNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) GetByCode(_ context.Context, code string) (Promotion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if p.Code == code {
			return p, nil
		}
	}
	return Promotion{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, p Promotion) (Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Code = NormalizeCode(p.Code)
	if r.codeTaken(p.Code, 0) {
		return Promotion{}, ErrDuplicateCode
	}
	p.ID = r.nextID
	r.put(p)
	return p, nil
}

func (r *InMemoryRepository) Update(_ context.Context, p Promotion) (Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[p.ID]; !ok {
		return Promotion{}, ErrNotFound
	}
	p.Code = NormalizeCode(p.Code)
	if r.codeTaken(p.Code, p.ID) {
		return Promotion{}, ErrDuplicateCode
	}
	r.put(p)
	return p, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[id]; !ok {
		return ErrNotFound
	}
	delete(r.storage, id)
	return nil
}

func (r *InMemoryRepository) Seed(_ context.Context, promos []Promotion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range promos {
		if _, ok := r.storage[p.ID]; ok {
			continue
		}
		r.put(p)
	}
	return nil
}
