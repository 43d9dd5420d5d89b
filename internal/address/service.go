package address

import "context"

// Service orchestrates address retrieval and edits.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID int) ([]Address, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.List(ctx, userID)
}

// Get returns the address only if it belongs to userID.
func (s *Service) Get(ctx context.Context, userID, addressID int) (Address, error) {
	if userID <= 0 || addressID <= 0 {
		return Address{}, ErrNotFound
	}
	return s.repo.Get(ctx, userID, addressID)
}

func (s *Service) Add(ctx context.Context, a Address) (Address, error) {
	if a.UserID <= 0 {
		return Address{}, ErrNotFound
	}
	if err := a.Validate(); err != nil {
		return Address{}, err
	}
	return s.repo.Add(ctx, a)
}

func (s *Service) Update(ctx context.Context, a Address) (Address, error) {
	if a.UserID <= 0 || a.ID <= 0 {
		return Address{}, ErrNotFound
	}
	if err := a.Validate(); err != nil {
		return Address{}, err
	}
	return s.repo.Update(ctx, a)
}

func (s *Service) Delete(ctx context.Context, userID, addressID int) error {
	if userID <= 0 || addressID <= 0 {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, userID, addressID)
}
