package order

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrDriverUnavailable = errors.New("driver is already on an active delivery")
	ErrStatusConflict    = errors.New("order status changed concurrently")
	ErrInvalidOrder      = errors.New("invalid order")
)

type Status string

const (
	Pending   Status = "Pending"
	Preparing Status = "Preparing"
	OnTheWay  Status = "On the way"
	Delivered Status = "Delivered"
	Cancelled Status = "Cancelled"
)

// AllStatuses lists statuses in lifecycle order.
var AllStatuses = []Status{Pending, Preparing, OnTheWay, Delivered, Cancelled}

var transitions = map[Status][]Status{
	Pending:   {Preparing, Cancelled},
	Preparing: {OnTheWay, Cancelled},
	OnTheWay:  {Delivered},
}

// ParseStatus accepts any casing of a known status.
func ParseStatus(s string) (Status, bool) {
	for _, st := range AllStatuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// IsActive reports whether the order still occupies its driver, if any.
func (s Status) IsActive() bool {
	return !s.IsTerminal()
}

// Line is a purchased product with its price frozen at checkout.
type Line struct {
	ProductID int             `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
}

func (l Line) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID                  int             `json:"id"`
	UserID              int             `json:"userId"`
	AddressID           int             `json:"addressId,omitempty"`
	Lines               []Line          `json:"items"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	DeliveryFee         decimal.Decimal `json:"deliveryFee"`
	Discount            decimal.Decimal `json:"discount"`
	Total               decimal.Decimal `json:"total"`
	PromoCode           string          `json:"promoCode,omitempty"`
	Status              Status          `json:"status"`
	DriverID            *int            `json:"driverId,omitempty"`
	CreatedAt           time.Time       `json:"orderDate"`
	EstimatedDeliveryAt time.Time       `json:"estimatedDelivery"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// Validate checks the money invariants of an order.
func (o Order) Validate() error {
	if len(o.Lines) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidOrder)
	}
	for _, l := range o.Lines {
		if l.Quantity <= 0 {
			return fmt.Errorf("%w: product %d has quantity %d", ErrInvalidOrder, l.ProductID, l.Quantity)
		}
	}
	if o.Discount.IsNegative() {
		return fmt.Errorf("%w: negative discount", ErrInvalidOrder)
	}
	if o.Total.IsNegative() {
		return fmt.Errorf("%w: negative total", ErrInvalidOrder)
	}
	if want := o.Subtotal.Add(o.DeliveryFee).Sub(o.Discount); !o.Total.Equal(want) {
		return fmt.Errorf("%w: total %s != %s", ErrInvalidOrder, o.Total, want)
	}
	return nil
}

// matches implements Filter for in-memory stores.
func (o Order) matches(f Filter) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.UserID != 0 && o.UserID != f.UserID {
		return false
	}
	if f.DriverID != 0 && (o.DriverID == nil || *o.DriverID != f.DriverID) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" || strconv.Itoa(o.ID) == q {
		return true
	}
	for _, l := range o.Lines {
		if strings.Contains(strings.ToLower(l.Name), q) {
			return true
		}
	}
	return false
}

// Filter narrows List results. Query matches an order id exactly or any
// item name as a substring.
type Filter struct {
	Status   Status
	UserID   int
	DriverID int
	Query    string
}

type Stats struct {
	Counts            map[Status]int  `json:"counts"`
	TotalOrders       int             `json:"totalOrders"`
	Revenue           decimal.Decimal `json:"revenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

// ComputeStats counts orders per status. Cancelled orders are excluded from
// revenue.
func ComputeStats(orders []Order) Stats {
	st := Stats{Counts: make(map[Status]int, len(AllStatuses)), Revenue: decimal.Zero, AverageOrderValue: decimal.Zero}
	for _, s := range AllStatuses {
		st.Counts[s] = 0
	}
	billed := 0
	for _, o := range orders {
		st.Counts[o.Status]++
		st.TotalOrders++
		if o.Status != Cancelled {
			st.Revenue = st.Revenue.Add(o.Total)
			billed++
		}
	}
	if billed > 0 {
		st.AverageOrderValue = st.Revenue.Div(decimal.NewFromInt(int64(billed))).Round(2)
	}
	return st
}
