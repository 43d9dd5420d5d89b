package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/wichananm65/grocery-delivery-backend/internal/product"
)

// Status is the stock classification shown on the inventory screen.
type Status string

const (
	OutOfStock Status = "out_of_stock"
	LowStock   Status = "low_stock"
	InStock    Status = "in_stock"
)

const DefaultLowStockThreshold = 5

// Classify maps a stock level to its status: 0 is out of stock, 1..threshold
// is low stock.
func Classify(stock, threshold int) Status {
	switch {
	case stock <= 0:
		return OutOfStock
	case stock <= threshold:
		return LowStock
	default:
		return InStock
	}
}

// Item is a product with its classification.
type Item struct {
	product.Product
	Status Status `json:"status"`
}

type Filter struct {
	CategoryID int
	Query      string
	Status     Status
}

type Summary struct {
	TotalProducts  int             `json:"totalProducts"`
	LowStock       int             `json:"lowStock"`
	OutOfStock     int             `json:"outOfStock"`
	InventoryValue decimal.Decimal `json:"inventoryValue"`
}
