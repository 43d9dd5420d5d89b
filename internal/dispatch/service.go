package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/grocery-delivery-backend/internal/driver"
	"github.com/wichananm65/grocery-delivery-backend/internal/order"
)

// ErrNotAssigned is returned when a driver acts on an order bound to
// someone else.
var ErrNotAssigned = errors.New("order is not assigned to this driver")

type Orders interface {
	Get(ctx context.Context, id int) (order.Order, error)
	List(ctx context.Context, f order.Filter) ([]order.Order, error)
	AssignDriver(ctx context.Context, id, driverID int) (order.Order, error)
	MarkDelivered(ctx context.Context, id int) (order.Order, error)
}

type Drivers interface {
	List(ctx context.Context) ([]driver.Driver, error)
	Get(ctx context.Context, id int) (driver.Driver, error)
	Earnings(totals []decimal.Decimal) decimal.Decimal
}

type Earnings struct {
	DriverID        int             `json:"driverId"`
	DeliveredOrders int             `json:"deliveredOrders"`
	Total           decimal.Decimal `json:"total"`
}

type Service struct {
	orders  Orders
	drivers Drivers
}

func NewService(o Orders, d Drivers) *Service {
	return &Service{orders: o, drivers: d}
}

// ListAvailable returns drivers that are not bound to an active order.
func (s *Service) ListAvailable(ctx context.Context) ([]driver.Driver, error) {
	drivers, err := s.drivers.List(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.List(ctx, order.Filter{})
	if err != nil {
		return nil, err
	}
	busy := make(map[int]bool)
	for _, o := range orders {
		if o.DriverID != nil && o.Status.IsActive() {
			busy[*o.DriverID] = true
		}
	}
	out := make([]driver.Driver, 0, len(drivers))
	for _, d := range drivers {
		if !busy[d.ID] {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Service) Drivers(ctx context.Context) ([]driver.Driver, error) {
	return s.drivers.List(ctx)
}

func (s *Service) Assign(ctx context.Context, orderID, driverID int) (order.Order, error) {
	return s.orders.AssignDriver(ctx, orderID, driverID)
}

// ActiveDeliveries lists the driver's orders that are On the way.
func (s *Service) ActiveDeliveries(ctx context.Context, driverID int) ([]order.Order, error) {
	if _, err := s.drivers.Get(ctx, driverID); err != nil {
		return nil, err
	}
	return s.orders.List(ctx, order.Filter{DriverID: driverID, Status: order.OnTheWay})
}

// CompleteDelivery lets a driver close an order they carry.
func (s *Service) CompleteDelivery(ctx context.Context, driverID, orderID int) (order.Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return order.Order{}, err
	}
	if o.DriverID == nil || *o.DriverID != driverID {
		return order.Order{}, fmt.Errorf("order %d: %w", orderID, ErrNotAssigned)
	}
	return s.orders.MarkDelivered(ctx, orderID)
}

func (s *Service) Earnings(ctx context.Context, driverID int) (Earnings, error) {
	if _, err := s.drivers.Get(ctx, driverID); err != nil {
		return Earnings{}, err
	}
	delivered, err := s.orders.List(ctx, order.Filter{DriverID: driverID, Status: order.Delivered})
	if err != nil {
		return Earnings{}, err
	}
	totals := make([]decimal.Decimal, len(delivered))
	for i, o := range delivered {
		totals[i] = o.Total
	}
	return Earnings{
		DriverID:        driverID,
		DeliveredOrders: len(delivered),
		Total:           s.drivers.Earnings(totals),
	}, nil
}
