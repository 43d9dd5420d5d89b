package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	OrderCreated    Type = "order.created"
	OrderPreparing  Type = "order.preparing"
	OrderDispatched Type = "order.dispatched"
	OrderDelivered  Type = "order.delivered"
	OrderCancelled  Type = "order.cancelled"
)

// Event records one successful order state change.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       Type            `json:"type"`
	OrderID    int             `json:"orderId"`
	Status     string          `json:"status"`
	DriverID   *int            `json:"driverId,omitempty"`
	Total      decimal.Decimal `json:"total"`
	OccurredAt time.Time       `json:"occurredAt"`
}

func New(t Type, orderID int, status string, driverID *int, total decimal.Decimal, at time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		OrderID:    orderID,
		Status:     status,
		DriverID:   driverID,
		Total:      total,
		OccurredAt: at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}
