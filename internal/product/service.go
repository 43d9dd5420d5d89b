package product

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, f Filter) ([]Product, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) GetByID(ctx context.Context, id int) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByIDs(ctx context.Context, ids []int) ([]Product, error) {
	return s.repo.ListByIDs(ctx, ids)
}

func (s *Service) SetStock(ctx context.Context, id, stock int) error {
	return s.repo.SetStock(ctx, id, stock)
}

func (s *Service) Reserve(ctx context.Context, changes []StockChange) error {
	return s.repo.Reserve(ctx, changes)
}

func (s *Service) Release(ctx context.Context, changes []StockChange) error {
	return s.repo.Release(ctx, changes)
}
