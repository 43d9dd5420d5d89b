package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/grocery-delivery-backend/internal/product"
)

// Catalog is the part of the product store inventory control writes to.
type Catalog interface {
	List(ctx context.Context, f product.Filter) ([]product.Product, error)
	GetByID(ctx context.Context, id int) (product.Product, error)
	SetStock(ctx context.Context, id, stock int) error
}

type Service struct {
	catalog   Catalog
	threshold int
}

func NewService(c Catalog, threshold int) *Service {
	if threshold < 0 {
		threshold = DefaultLowStockThreshold
	}
	return &Service{catalog: c, threshold: threshold}
}

func (s *Service) Classify(stock int) Status {
	return Classify(stock, s.threshold)
}

// AdjustStock overwrites the stock level of one product.
func (s *Service) AdjustStock(ctx context.Context, productID, newStock int) (Item, error) {
	if newStock < 0 {
		return Item{}, product.ErrInvalidStock
	}
	if err := s.catalog.SetStock(ctx, productID, newStock); err != nil {
		return Item{}, err
	}
	p, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return Item{}, err
	}
	return Item{Product: p, Status: s.Classify(p.Stock)}, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]Item, error) {
	products, err := s.catalog.List(ctx, product.Filter{CategoryID: f.CategoryID, Query: f.Query})
	if err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(products))
	for _, p := range products {
		st := s.Classify(p.Stock)
		if f.Status != "" && st != f.Status {
			continue
		}
		out = append(out, Item{Product: p, Status: st})
	}
	return out, nil
}

// Summary counts low stock as stock <= threshold, so out-of-stock products
// are included in LowStock too.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	products, err := s.catalog.List(ctx, product.Filter{})
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{TotalProducts: len(products), InventoryValue: decimal.Zero}
	for _, p := range products {
		if p.Stock <= s.threshold {
			sum.LowStock++
		}
		if p.Stock == 0 {
			sum.OutOfStock++
		}
		sum.InventoryValue = sum.InventoryValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	return sum, nil
}
