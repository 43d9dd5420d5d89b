package report

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/grocery-delivery-backend/internal/driver"
	"github.com/wichananm65/grocery-delivery-backend/internal/inventory"
	"github.com/wichananm65/grocery-delivery-backend/internal/order"
)

const DefaultTopProducts = 5

type Orders interface {
	List(ctx context.Context, f order.Filter) ([]order.Order, error)
}

type Inventory interface {
	Summary(ctx context.Context) (inventory.Summary, error)
}

type Promotions interface {
	ActiveCount(ctx context.Context) (int, error)
}

type Dispatch interface {
	Drivers(ctx context.Context) ([]driver.Driver, error)
	ListAvailable(ctx context.Context) ([]driver.Driver, error)
}

// Dashboard holds the admin landing page KPIs.
type Dashboard struct {
	TotalOrders       int             `json:"totalOrders"`
	Revenue           decimal.Decimal `json:"revenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	ActiveOrders      int             `json:"activeOrders"`
	PendingOrders     int             `json:"pendingOrders"`
	ActivePromotions  int             `json:"activePromotions"`
	TotalProducts     int             `json:"totalProducts"`
	LowStockProducts  int             `json:"lowStockProducts"`
	TotalDrivers      int             `json:"totalDrivers"`
	AvailableDrivers  int             `json:"availableDrivers"`
}

type ProductSales struct {
	ProductID int             `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type Service struct {
	orders     Orders
	inventory  Inventory
	promotions Promotions
	dispatch   Dispatch
}

func NewService(o Orders, i Inventory, p Promotions, d Dispatch) *Service {
	return &Service{orders: o, inventory: i, promotions: p, dispatch: d}
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	orders, err := s.orders.List(ctx, order.Filter{})
	if err != nil {
		return Dashboard{}, err
	}
	stats := order.ComputeStats(orders)

	inv, err := s.inventory.Summary(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	promos, err := s.promotions.ActiveCount(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	drivers, err := s.dispatch.Drivers(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	available, err := s.dispatch.ListAvailable(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		TotalOrders:       stats.TotalOrders,
		Revenue:           stats.Revenue,
		AverageOrderValue: stats.AverageOrderValue,
		ActiveOrders:      stats.Counts[order.OnTheWay],
		PendingOrders:     stats.Counts[order.Pending],
		ActivePromotions:  promos,
		TotalProducts:     inv.TotalProducts,
		LowStockProducts:  inv.LowStock,
		TotalDrivers:      len(drivers),
		AvailableDrivers:  len(available),
	}, nil
}

// TopProducts ranks products by units sold across non-cancelled orders.
// Ties are broken by revenue, then product id.
func (s *Service) TopProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	if limit <= 0 {
		limit = DefaultTopProducts
	}
	orders, err := s.orders.List(ctx, order.Filter{})
	if err != nil {
		return nil, err
	}

	byID := make(map[int]*ProductSales)
	for _, o := range orders {
		if o.Status == order.Cancelled {
			continue
		}
		for _, l := range o.Lines {
			ps, ok := byID[l.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: l.ProductID, Name: l.Name, Revenue: decimal.Zero}
				byID[l.ProductID] = ps
			}
			ps.Quantity += l.Quantity
			ps.Revenue = ps.Revenue.Add(l.Amount())
		}
	}

	out := make([]ProductSales, 0, len(byID))
	for _, ps := range byID {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].ProductID < out[j].ProductID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
