package product

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidStock      = errors.New("stock must not be negative")
	ErrInvalidProduct    = errors.New("invalid product")
)

// Product is a catalog entry. Products are never deleted; only stock changes
// after seeding.
type Product struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	CategoryID int             `json:"categoryId"`
	Image      string          `json:"image,omitempty"`
	Stock      int             `json:"stock"`
}

// Validate checks the fields required of every stored product.
func (p Product) Validate() error {
	switch {
	case p.ID <= 0:
		return fmt.Errorf("%w: id must be positive", ErrInvalidProduct)
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: price must be >= 0", ErrInvalidProduct)
	case p.Stock < 0:
		return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrInvalidStock)
	}
	return nil
}

// StockChange is one line of a reservation or release.
type StockChange struct {
	ProductID int
	Quantity  int
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	CategoryID int
	Query      string
}
