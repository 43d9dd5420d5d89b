package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/grocery-delivery-backend/internal/product"
	"github.com/wichananm65/grocery-delivery-backend/internal/promotion"
)

// Catalog is the read side of the product store.
type Catalog interface {
	GetByID(ctx context.Context, id int) (product.Product, error)
	ListByIDs(ctx context.Context, ids []int) ([]product.Product, error)
}

// Promotions resolves a code to an applicable promotion.
type Promotions interface {
	Lookup(ctx context.Context, code string) (promotion.Promotion, error)
}

type Service struct {
	repo        Repository
	catalog     Catalog
	promos      Promotions
	deliveryFee decimal.Decimal
	now         func() time.Time

	// mu serializes read-modify-write cycles on stored carts
	mu sync.Mutex
}

func NewService(repo Repository, catalog Catalog, promos Promotions, deliveryFee decimal.Decimal) *Service {
	return &Service{
		repo:        repo,
		catalog:     catalog,
		promos:      promos,
		deliveryFee: deliveryFee,
		now:         time.Now,
	}
}

func (s *Service) DeliveryFee() decimal.Decimal {
	return s.deliveryFee
}

func (s *Service) Get(ctx context.Context, userID int) (Cart, error) {
	return s.repo.Get(ctx, userID)
}

func (s *Service) checkStock(ctx context.Context, productID, qty int) error {
	p, err := s.catalog.GetByID(ctx, productID)
	if errors.Is(err, product.ErrNotFound) {
		return fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if qty > p.Stock {
		return fmt.Errorf("product %d has %d left: %w", productID, p.Stock, ErrInsufficientStock)
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, userID int, fn func(*Cart) error) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return Cart{}, err
	}
	if err := fn(&c); err != nil {
		return Cart{}, err
	}
	c.UserID = userID
	c.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// AddLine inserts productID or increments its quantity. A zero qty counts as 1.
func (s *Service) AddLine(ctx context.Context, userID, productID, qty int) (Cart, error) {
	if qty < 0 {
		return Cart{}, ErrInvalidQuantity
	}
	if qty == 0 {
		qty = 1
	}
	return s.mutate(ctx, userID, func(c *Cart) error {
		want := c.quantityOf(productID) + qty
		if err := s.checkStock(ctx, productID, want); err != nil {
			return err
		}
		c.set(productID, want)
		return nil
	})
}

// SetQuantity overwrites the line quantity; 0 removes the line.
func (s *Service) SetQuantity(ctx context.Context, userID, productID, qty int) (Cart, error) {
	if qty < 0 {
		return Cart{}, ErrInvalidQuantity
	}
	return s.mutate(ctx, userID, func(c *Cart) error {
		if qty > 0 {
			if err := s.checkStock(ctx, productID, qty); err != nil {
				return err
			}
		} else if _, err := s.catalog.GetByID(ctx, productID); err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return fmt.Errorf("product %d: %w", productID, ErrNotFound)
			}
			return err
		}
		c.set(productID, qty)
		return nil
	})
}

// ApplyPromotion binds code to the cart, replacing any previous one. On
// failure the cart is left as it was.
func (s *Service) ApplyPromotion(ctx context.Context, userID int, code string) (Cart, error) {
	return s.mutate(ctx, userID, func(c *Cart) error {
		p, err := s.promos.Lookup(ctx, code)
		if err != nil {
			return err
		}
		c.PromoCode = p.Code
		return nil
	})
}

func (s *Service) RemovePromotion(ctx context.Context, userID int) (Cart, error) {
	return s.mutate(ctx, userID, func(c *Cart) error {
		c.PromoCode = ""
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Delete(ctx, userID)
}

func (s *Service) Totals(ctx context.Context, userID int) (Totals, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return Totals{}, err
	}
	return snap.Totals, nil
}

// Snapshot prices the cart with live catalog data. A bound promotion that is
// no longer applicable contributes no discount and is omitted.
func (s *Service) Snapshot(ctx context.Context, userID int) (Snapshot, error) {
	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	return s.price(ctx, c)
}

func (s *Service) price(ctx context.Context, c Cart) (Snapshot, error) {
	ids := make([]int, 0, len(c.Lines))
	for _, l := range c.Lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.catalog.ListByIDs(ctx, ids)
	if err != nil {
		return Snapshot{}, err
	}
	byID := make(map[int]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	snap := Snapshot{Lines: make([]SnapshotLine, 0, len(c.Lines))}
	subtotal := decimal.Zero
	for _, l := range c.Lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return Snapshot{}, fmt.Errorf("product %d: %w", l.ProductID, ErrNotFound)
		}
		snap.Lines = append(snap.Lines, SnapshotLine{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image,
			Quantity:  l.Quantity,
			UnitPrice: p.Price,
		})
		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	discount := decimal.Zero
	if c.PromoCode != "" {
		p, err := s.promos.Lookup(ctx, c.PromoCode)
		switch {
		case err == nil:
			discount = p.Discount(subtotal, s.deliveryFee)
			snap.PromoCode = p.Code
		case !errors.Is(err, promotion.ErrPromotionNotFound):
			return Snapshot{}, err
		}
	}

	snap.Totals = Totals{
		Subtotal:    subtotal,
		DeliveryFee: s.deliveryFee,
		Discount:    discount,
		Total:       subtotal.Add(s.deliveryFee).Sub(discount),
	}
	return snap, nil
}
