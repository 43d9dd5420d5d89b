package driver

import (
	"context"

	"github.com/shopspring/decimal"
)

// DefaultCommission is the driver's share of each delivered order total.
var DefaultCommission = decimal.RequireFromString("0.15")

type Service struct {
	repo       Repository
	commission decimal.Decimal
}

func NewService(r Repository, commission decimal.Decimal) *Service {
	if commission.IsNegative() {
		commission = DefaultCommission
	}
	return &Service{repo: r, commission: commission}
}

func (s *Service) List(ctx context.Context) ([]Driver, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int) (Driver, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) IncrementCompleted(ctx context.Context, id int) error {
	_, err := s.repo.IncrementCompleted(ctx, id)
	return err
}

// Commission is the driver's earning for one delivered order, rounded to cents.
func (s *Service) Commission(orderTotal decimal.Decimal) decimal.Decimal {
	return orderTotal.Mul(s.commission).Round(2)
}

// Earnings sums the commission over the given delivered order totals.
func (s *Service) Earnings(totals []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(s.Commission(t))
	}
	return sum
}
