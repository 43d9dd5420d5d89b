package promotion

import (
	"context"
	"errors"
	"time"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, now: time.Now}
}

// WithClock replaces the time source used for expiry checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Lookup returns the promotion for code if it can currently be applied.
// Absent, inactive and expired codes all yield ErrPromotionNotFound.
func (s *Service) Lookup(ctx context.Context, code string) (Promotion, error) {
	p, err := s.repo.GetByCode(ctx, NormalizeCode(code))
	if errors.Is(err, ErrNotFound) {
		return Promotion{}, ErrPromotionNotFound
	}
	if err != nil {
		return Promotion{}, err
	}
	if !p.Applicable(s.now()) {
		return Promotion{}, ErrPromotionNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]Promotion, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, p Promotion) (Promotion, error) {
	p.Code = NormalizeCode(p.Code)
	if err := p.Validate(); err != nil {
		return Promotion{}, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) SetActive(ctx context.Context, id int, active bool) (Promotion, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Promotion{}, err
	}
	p.Active = active
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// ActiveCount counts promotions that are currently applicable.
func (s *Service) ActiveCount(ctx context.Context) (int, error) {
	promos, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	n := 0
	for _, p := range promos {
		if p.Applicable(now) {
			n++
		}
	}
	return n, nil
}
