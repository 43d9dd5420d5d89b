package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/wichananm65/grocery-delivery-backend/internal/address"
	"github.com/wichananm65/grocery-delivery-backend/internal/cart"
	"github.com/wichananm65/grocery-delivery-backend/internal/driver"
	"github.com/wichananm65/grocery-delivery-backend/internal/events"
	"github.com/wichananm65/grocery-delivery-backend/internal/product"
)

// DefaultETA is how long after placement an order is expected to arrive.
const DefaultETA = 30 * time.Minute

type CartSource interface {
	Snapshot(ctx context.Context, userID int) (cart.Snapshot, error)
	Clear(ctx context.Context, userID int) error
}

type Stock interface {
	Reserve(ctx context.Context, changes []product.StockChange) error
	Release(ctx context.Context, changes []product.StockChange) error
}

type Drivers interface {
	Get(ctx context.Context, id int) (driver.Driver, error)
	IncrementCompleted(ctx context.Context, id int) error
}

type Addresses interface {
	Get(ctx context.Context, userID, addressID int) (address.Address, error)
	List(ctx context.Context, userID int) ([]address.Address, error)
}

// Deps groups the collaborators of Service.
type Deps struct {
	Repo      Repository
	Carts     CartSource
	Stock     Stock
	Drivers   Drivers
	Addresses Addresses
	Events    events.Publisher
	ETA       time.Duration
	Now       func() time.Time
}

// Service owns the order state machine. Every status change goes through
// the repository's compare-and-swap so concurrent writers cannot both win.
type Service struct {
	repo      Repository
	carts     CartSource
	stock     Stock
	drivers   Drivers
	addresses Addresses
	events    events.Publisher
	eta       time.Duration
	now       func() time.Time

	checkoutMu sync.Mutex
	assignMu   sync.Mutex
}

func NewService(d Deps) *Service {
	s := &Service{
		repo:      d.Repo,
		carts:     d.Carts,
		stock:     d.Stock,
		drivers:   d.Drivers,
		addresses: d.Addresses,
		events:    d.Events,
		eta:       d.ETA,
		now:       d.Now,
	}
	if s.eta <= 0 {
		s.eta = DefaultETA
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.events == nil {
		s.events = events.NewLogPublisher()
	}
	return s
}

func stockChanges(lines []Line) []product.StockChange {
	out := make([]product.StockChange, 0, len(lines))
	for _, l := range lines {
		out = append(out, product.StockChange{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}

// resolveAddress returns addressID if it belongs to userID, or the user's
// default address when addressID is 0.
func (s *Service) resolveAddress(ctx context.Context, userID, addressID int) (int, error) {
	if addressID != 0 {
		if _, err := s.addresses.Get(ctx, userID, addressID); err != nil {
			return 0, fmt.Errorf("address %d: %w", addressID, err)
		}
		return addressID, nil
	}
	addrs, err := s.addresses.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	for _, a := range addrs {
		if a.IsDefault {
			return a.ID, nil
		}
	}
	if len(addrs) > 0 {
		return addrs[0].ID, nil
	}
	return 0, fmt.Errorf("no delivery address: %w", address.ErrNotFound)
}

// Create checks out the user's cart: it reserves stock for every line,
// freezes prices and totals into a Pending order and empties the cart.
func (s *Service) Create(ctx context.Context, userID, addressID int) (Order, error) {
	s.checkoutMu.Lock()
	defer s.checkoutMu.Unlock()

	snap, err := s.carts.Snapshot(ctx, userID)
	if err != nil {
		return Order{}, err
	}
	if len(snap.Lines) == 0 {
		return Order{}, ErrEmptyCart
	}
	addressID, err = s.resolveAddress(ctx, userID, addressID)
	if err != nil {
		return Order{}, err
	}

	now := s.now().UTC()
	o := Order{
		UserID:              userID,
		AddressID:           addressID,
		Lines:               make([]Line, 0, len(snap.Lines)),
		Subtotal:            snap.Subtotal,
		DeliveryFee:         snap.DeliveryFee,
		Discount:            snap.Discount,
		Total:               snap.Total,
		PromoCode:           snap.PromoCode,
		Status:              Pending,
		CreatedAt:           now,
		EstimatedDeliveryAt: now.Add(s.eta),
		UpdatedAt:           now,
	}
	for _, l := range snap.Lines {
		o.Lines = append(o.Lines, Line{ProductID: l.ProductID, Name: l.Name, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	if err := o.Validate(); err != nil {
		return Order{}, err
	}

	changes := stockChanges(o.Lines)
	if err := s.stock.Reserve(ctx, changes); err != nil {
		return Order{}, err
	}
	created, err := s.repo.Create(ctx, o)
	if err != nil {
		if relErr := s.stock.Release(ctx, changes); relErr != nil {
			log.Errorw("release stock after failed order insert", "user_id", userID, "error", relErr)
		}
		return Order{}, err
	}
	if err := s.carts.Clear(ctx, userID); err != nil {
		log.Warnw("clear cart after checkout", "user_id", userID, "order_id", created.ID, "error", err)
	}

	log.Infow("order created", "order_id", created.ID, "user_id", userID, "total", created.Total.String())
	s.publish(ctx, events.OrderCreated, created)
	return created, nil
}

func (s *Service) publish(ctx context.Context, t events.Type, o Order) {
	e := events.New(t, o.ID, string(o.Status), o.DriverID, o.Total, o.UpdatedAt)
	if err := s.events.Publish(ctx, e); err != nil {
		log.Warnw("publish order event", "order_id", o.ID, "type", string(t), "error", err)
	}
}

// advance moves an order to `to` if the lifecycle allows it from its
// current status.
func (s *Service) advance(ctx context.Context, id int, to Status, driverID *int) (Order, Status, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, "", err
	}
	if !o.Status.CanTransitionTo(to) {
		return Order{}, "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	updated, err := s.repo.UpdateStatus(ctx, id, o.Status, to, driverID, s.now().UTC())
	if errors.Is(err, ErrStatusConflict) {
		return Order{}, "", fmt.Errorf("%w: %w", ErrInvalidTransition, err)
	}
	if err != nil {
		return Order{}, "", err
	}
	return updated, o.Status, nil
}

func (s *Service) StartPreparing(ctx context.Context, id int) (Order, error) {
	o, _, err := s.advance(ctx, id, Preparing, nil)
	if err != nil {
		return Order{}, err
	}
	s.publish(ctx, events.OrderPreparing, o)
	return o, nil
}

// AssignDriver binds driverID to a Preparing order and moves it to On the
// way. A driver can hold one active order at a time.
func (s *Service) AssignDriver(ctx context.Context, id, driverID int) (Order, error) {
	s.assignMu.Lock()
	defer s.assignMu.Unlock()

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !o.Status.CanTransitionTo(OnTheWay) {
		return Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, OnTheWay)
	}
	if _, err := s.drivers.Get(ctx, driverID); err != nil {
		return Order{}, fmt.Errorf("driver %d: %w", driverID, err)
	}
	busy, err := s.DriverBusy(ctx, driverID)
	if err != nil {
		return Order{}, err
	}
	if busy {
		return Order{}, fmt.Errorf("driver %d: %w", driverID, ErrDriverUnavailable)
	}

	updated, _, err := s.advance(ctx, id, OnTheWay, &driverID)
	if err != nil {
		return Order{}, err
	}
	log.Infow("driver assigned", "order_id", id, "driver_id", driverID)
	s.publish(ctx, events.OrderDispatched, updated)
	return updated, nil
}

// DriverBusy reports whether driverID is bound to an order that has not
// reached a terminal status.
func (s *Service) DriverBusy(ctx context.Context, driverID int) (bool, error) {
	orders, err := s.repo.List(ctx, Filter{DriverID: driverID})
	if err != nil {
		return false, err
	}
	for _, o := range orders {
		if o.Status.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

// MarkDelivered completes an On the way order and credits its driver.
func (s *Service) MarkDelivered(ctx context.Context, id int) (Order, error) {
	o, prev, err := s.advance(ctx, id, Delivered, nil)
	if err != nil {
		return Order{}, err
	}
	if o.DriverID != nil {
		if err := s.drivers.IncrementCompleted(ctx, *o.DriverID); err != nil {
			if _, revErr := s.repo.UpdateStatus(ctx, id, Delivered, prev, nil, s.now().UTC()); revErr != nil {
				log.Errorw("revert delivered status", "order_id", id, "error", revErr)
			}
			return Order{}, fmt.Errorf("credit driver %d: %w", *o.DriverID, err)
		}
	}
	s.publish(ctx, events.OrderDelivered, o)
	return o, nil
}

// Cancel stops a Pending or Preparing order and returns its stock.
func (s *Service) Cancel(ctx context.Context, id int) (Order, error) {
	o, _, err := s.advance(ctx, id, Cancelled, nil)
	if err != nil {
		return Order{}, err
	}
	if err := s.stock.Release(ctx, stockChanges(o.Lines)); err != nil {
		log.Errorw("release stock for cancelled order", "order_id", id, "error", err)
	}
	s.publish(ctx, events.OrderCancelled, o)
	return o, nil
}

func (s *Service) Get(ctx context.Context, id int) (Order, error) {
	return s.repo.GetByID(ctx, id)
}

// GetForUser hides orders owned by someone else behind ErrNotFound.
func (s *Service) GetForUser(ctx context.Context, userID, id int) (Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.UserID != userID {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]Order, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	orders, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(orders), nil
}

func (s *Service) Tracking(ctx context.Context, userID, id int) (Tracking, error) {
	o, err := s.GetForUser(ctx, userID, id)
	if err != nil {
		return Tracking{}, err
	}
	return TrackingFor(o, s.now()), nil
}
