package cart

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must not be negative")
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("quantity exceeds available stock")
)

type Line struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// Cart is the stored form: product references only, prices are read live.
type Cart struct {
	UserID    int       `json:"userId"`
	Lines     []Line    `json:"items"`
	PromoCode string    `json:"promoCode,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Cart) find(productID int) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) quantityOf(productID int) int {
	if i := c.find(productID); i >= 0 {
		return c.Lines[i].Quantity
	}
	return 0
}

// set writes qty for productID, removing the line when qty is 0.
func (c *Cart) set(productID, qty int) {
	i := c.find(productID)
	switch {
	case i < 0 && qty > 0:
		c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: qty})
	case i >= 0 && qty == 0:
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	case i >= 0:
		c.Lines[i].Quantity = qty
	}
}

type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

// SnapshotLine is a cart line priced at the moment the snapshot was taken.
type SnapshotLine struct {
	ProductID int             `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
}

type Snapshot struct {
	Lines     []SnapshotLine `json:"items"`
	PromoCode string         `json:"promoCode,omitempty"`
	Totals
}
