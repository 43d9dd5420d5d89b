package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/grocery-delivery-backend/internal/address"
	"github.com/wichananm65/grocery-delivery-backend/internal/cart"
	"github.com/wichananm65/grocery-delivery-backend/internal/driver"
	"github.com/wichananm65/grocery-delivery-backend/internal/events"
	"github.com/wichananm65/grocery-delivery-backend/internal/product"
	"github.com/wichananm65/grocery-delivery-backend/internal/promotion"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var fixedNow = time.Date(2025, 9, 22, 12, 0, 0, 0, time.UTC)

type fixture struct {
	catalog  *product.InMemoryRepository
	carts    *cart.Service
	drivers  *driver.InMemoryRepository
	orders   *InMemoryRepository
	recorder *events.Recorder
	svc      *Service
}

func newFixture() *fixture {
	catalog := product.NewInMemoryRepository([]product.Product{
		{ID: 102, Name: "Bananas (1kg)", Price: d("2.2"), CategoryID: 2, Stock: 15},
		{ID: 105, Name: "Fresh Milk 1L", Price: d("1.2"), CategoryID: 4, Stock: 30},
		{ID: 107, Name: "Frozen Pizza", Price: d("5.5"), CategoryID: 5, Stock: 2},
	})
	promos := promotion.NewService(promotion.NewInMemoryRepository([]promotion.Promotion{
		{ID: 1, Title: "Welcome Discount", Code: "WELCOME10", Kind: promotion.Percentage, Value: d("10"), Active: true, ExpiryDate: "2025-12-31"},
	})).WithClock(func() time.Time { return fixedNow })
	carts := cart.NewService(cart.NewInMemoryRepository(), catalog, promos, d("2.5"))
	addrs := address.NewService(address.NewInMemoryRepository([]address.Address{
		{ID: 1, UserID: 1, Label: "Home", Address: "123 Main St", City: "Bangkok", IsDefault: true},
		{ID: 2, UserID: 1, Label: "Work", Address: "456 Office Rd", City: "Bangkok"},
	}))
	drivers := driver.NewInMemoryRepository([]driver.Driver{
		{ID: 301, Name: "Carlos Pérez", LicensePlate: "XYZ-123", Rating: 4.8, CompletedDeliveries: 120},
		{ID: 302, Name: "Maria Rodriguez", LicensePlate: "ABC-789", Rating: 4.9, CompletedDeliveries: 95},
	})
	orders := NewInMemoryRepository(nil)
	rec := events.NewRecorder()

	return &fixture{
		catalog:  catalog,
		carts:    carts,
		drivers:  drivers,
		orders:   orders,
		recorder: rec,
		svc: NewService(Deps{
			Repo:      orders,
			Carts:     carts,
			Stock:     catalog,
			Drivers:   driver.NewService(drivers, driver.DefaultCommission),
			Addresses: addrs,
			Events:    rec,
			Now:       func() time.Time { return fixedNow },
		}),
	}
}

func (f *fixture) fillCart(t *testing.T, userID int) {
	t.Helper()
	ctx := t.Context()
	_, err := f.carts.AddLine(ctx, userID, 105, 2)
	require.NoError(t, err)
	_, err = f.carts.AddLine(ctx, userID, 102, 3)
	require.NoError(t, err)
}

func (f *fixture) stockOf(t *testing.T, id int) int {
	t.Helper()
	p, err := f.catalog.GetByID(t.Context(), id)
	require.NoError(t, err)
	return p.Stock
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(d(want)), "want %s got %s", want, got)
}

func TestCreate_FreezesTotalsAndReservesStock(t *testing.T) {
	f := newFixture()
	ctx := t.Context()
	f.fillCart(t, 1)

	o, err := f.svc.Create(ctx, 1, 0)
	require.NoError(t, err)

	assert.Equal(t, Pending, o.Status)
	assert.Equal(t, 1, o.AddressID, "default address is used")
	require.Len(t, o.Lines, 2)
	assertDec(t, "9.0", o.Subtotal)
	assertDec(t, "2.5", o.DeliveryFee)
	assertDec(t, "0", o.Discount)
	assertDec(t, "11.5", o.Total)
	assert.Equal(t, fixedNow.Add(DefaultETA), o.EstimatedDeliveryAt)

	assert.Equal(t, 28, f.stockOf(t, 105))
	assert.Equal(t, 12, f.stockOf(t, 102))

	c, err := f.carts.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, c.Lines, "cart is emptied")
	assert.Equal(t, []events.Type{events.OrderCreated}, f.recorder.Types())
}

func TestCreate_WithPromotion(t *testing.T) {
	f := newFixture()
	ctx := t.Context()
	f.fillCart(t, 1)
	_, err := f.carts.ApplyPromotion(ctx, 1, "WELCOME10")
	require.NoError(t, err)

	o, err := f.svc.Create(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, o.AddressID)
	assert.Equal(t, "WELCOME10", o.PromoCode)
	assertDec(t, "0.9", o.Discount)
	assertDec(t, "10.6", o.Total)
}

func TestCreate_Errors(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(t.Context(), 1, 0)
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("foreign address", func(t *testing.T) {
		f := newFixture()
		f.fillCart(t, 2)
		_, err := f.svc.Create(t.Context(), 2, 1)
		assert.ErrorIs(t, err, address.ErrNotFound)
	})

	t.Run("no address on file", func(t *testing.T) {
		f := newFixture()
		f.fillCart(t, 2)
		_, err := f.svc.Create(t.Context(), 2, 0)
		assert.ErrorIs(t, err, address.ErrNotFound)
	})

	t.Run("stock sold out after carting", func(t *testing.T) {
		f := newFixture()
		ctx := t.Context()
		_, err := f.carts.AddLine(ctx, 1, 107, 2)
		require.NoError(t, err)
		require.NoError(t, f.catalog.SetStock(ctx, 107, 1))

		_, err = f.svc.Create(ctx, 1, 0)
		assert.ErrorIs(t, err, product.ErrInsufficientStock)
		assert.Equal(t, 1, f.stockOf(t, 107))

		c, err := f.carts.Get(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, c.Lines, 1, "cart is kept when checkout fails")
	})
}

func TestLifecycle_HappyPath(t *testing.T) {
	f := newFixture()
	ctx := t.Context()
	f.fillCart(t, 1)
	o, err := f.svc.Create(ctx, 1, 0)
	require.NoError(t, err)

	o, err = f.svc.StartPreparing(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, Preparing, o.Status)

	o, err = f.svc.AssignDriver(ctx, o.ID, 301)
	require.NoError(t, err)
	assert.Equal(t, OnTheWay, o.Status)
	require.NotNil(t, o.DriverID)
	assert.Equal(t, 301, *o.DriverID)

	_, err = f.svc.StartPreparing(ctx, o.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	o, err = f.svc.MarkDelivered(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, Delivered, o.Status)

	drv, err := f.drivers.GetByID(ctx, 301)
	require.NoError(t, err)
	assert.Equal(t, 121, drv.CompletedDeliveries)

	assert.Equal(t, []events.Type{
		events.OrderCreated, events.OrderPreparing, events.OrderDispatched, events.OrderDelivered,
	}, f.recorder.Types())
}

func TestTransitions_Rejected(t *testing.T) {
	f := newFixture()
	ctx := t.Context()
	f.fillCart(t, 1)
	o, err := f.svc.Create(ctx, 1, 0)
	require.NoError(t, err)

	_, err = f.svc.AssignDriver(ctx, o.ID, 301)
	assert.ErrorIs(t, err, ErrInvalidTransition, "pending orders cannot be dispatched")

	_, err = f.svc.MarkDelivered(ctx, o.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.StartPreparing(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := f.svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, Pending, got.Status)
}

func TestCancel_ReleasesStock(t *testing.T) {
	f := newFixture()
	ctx := t.Context()
	f.fillCart(t, 1)
	o, err := f.svc.Create(ctx, 1, 0)
	require.NoError(t, err)
	_, err = f.svc.StartPreparing(ctx, o.ID)
	require.NoError(t, err)

	o, err = f.svc.Cancel(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, Cancelled, o.Status)
	assert.Equal(t, 30, f.stockOf(t, 105))
	assert.Equal(t, 15, f.stockOf(t, 102))

	_, err = f.svc.Cancel(ctx, o.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "cancelled is terminal")
}

func TestCancel_NotAfterDispatch(t *testing.T) {
	f := newFixture()
	ctx := t.Context()
	f.fillCart(t, 1)
	o, err := f.svc.Create(ctx, 1, 0)
	require.NoError(t, err)
	_, err = f.svc.StartPreparing(ctx, o.ID)
	require.NoError(t, err)
	_, err = f.svc.AssignDriver(ctx, o.ID, 301)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, o.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAssignDriver_Rules(t *testing.T) {
	f := newFixture()
	ctx := t.Context()

	place := func() Order {
		f.fillCart(t, 1)
		o, err := f.svc.Create(ctx, 1, 0)
		require.NoError(t, err)
		o, err = f.svc.StartPreparing(ctx, o.ID)
		require.NoError(t, err)
		return o
	}
	first, second := place(), place()

	_, err := f.svc.AssignDriver(ctx, first.ID, 999)
	assert.ErrorIs(t, err, driver.ErrNotFound)

	_, err = f.svc.AssignDriver(ctx, first.ID, 301)
	require.NoError(t, err)

	busy, err := f.svc.DriverBusy(ctx, 301)
	require.NoError(t, err)
	assert.True(t, busy)

	_, err = f.svc.AssignDriver(ctx, second.ID, 301)
	assert.ErrorIs(t, err, ErrDriverUnavailable)

	_, err = f.svc.AssignDriver(ctx, second.ID, 302)
	require.NoError(t, err)

	_, err = f.svc.MarkDelivered(ctx, first.ID)
	require.NoError(t, err)
	busy, err = f.svc.DriverBusy(ctx, 301)
	require.NoError(t, err)
	assert.False(t, busy, "delivered orders free the driver")
}

type failingDrivers struct {
	Drivers
}

func (failingDrivers) IncrementCompleted(context.Context, int) error {
	return errors.New("driver store down")
}

func TestMarkDelivered_RevertsWhenDriverCreditFails(t *testing.T) {
	f := newFixture()
	ctx := t.Context()
	f.fillCart(t, 1)
	o, err := f.svc.Create(ctx, 1, 0)
	require.NoError(t, err)
	_, err = f.svc.StartPreparing(ctx, o.ID)
	require.NoError(t, err)
	_, err = f.svc.AssignDriver(ctx, o.ID, 301)
	require.NoError(t, err)

	f.svc.drivers = failingDrivers{Drivers: f.svc.drivers}
	_, err = f.svc.MarkDelivered(ctx, o.ID)
	require.Error(t, err)

	got, err := f.svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, OnTheWay, got.Status)
}

func TestGetForUser_HidesOtherUsersOrders(t *testing.T) {
	f := newFixture()
	ctx := t.Context()
	f.fillCart(t, 1)
	o, err := f.svc.Create(ctx, 1, 0)
	require.NoError(t, err)

	_, err = f.svc.GetForUser(ctx, 2, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	tr, err := f.svc.Tracking(ctx, 1, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, tr.RemainingMinutes)
	assert.True(t, tr.Steps[0].Done)
	assert.False(t, tr.Steps[1].Done)
}

func TestStats(t *testing.T) {
	orders := []Order{
		{ID: 1, Status: Delivered, Total: d("10")},
		{ID: 2, Status: Pending, Total: d("5")},
		{ID: 3, Status: Cancelled, Total: d("100")},
	}
	st := ComputeStats(orders)
	assert.Equal(t, 3, st.TotalOrders)
	assert.Equal(t, 1, st.Counts[Cancelled])
	assert.Equal(t, 0, st.Counts[OnTheWay])
	assertDec(t, "15", st.Revenue)
	assertDec(t, "7.5", st.AverageOrderValue)
}

func TestFilter(t *testing.T) {
	r := NewInMemoryRepository([]Order{
		{ID: 201, UserID: 1, Status: Delivered, Lines: []Line{{ProductID: 101, Name: "Organic Apples", Quantity: 1}}},
		{ID: 202, UserID: 1, Status: OnTheWay, Lines: []Line{{ProductID: 105, Name: "Fresh Milk 1L", Quantity: 2}}},
		{ID: 203, UserID: 2, Status: Pending, Lines: []Line{{ProductID: 105, Name: "Fresh Milk 1L", Quantity: 1}}},
	})
	ctx := t.Context()

	got, err := r.List(ctx, Filter{Query: "milk"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 203, got[0].ID, "newest first")

	got, err = r.List(ctx, Filter{Query: "201"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = r.List(ctx, Filter{UserID: 1, Status: OnTheWay})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 202, got[0].ID)
}

func TestStatus(t *testing.T) {
	st, ok := ParseStatus("on the way")
	assert.True(t, ok)
	assert.Equal(t, OnTheWay, st)
	_, ok = ParseStatus("shipped")
	assert.False(t, ok)

	assert.True(t, Pending.CanTransitionTo(Preparing))
	assert.False(t, Pending.CanTransitionTo(OnTheWay))
	assert.False(t, Delivered.CanTransitionTo(Cancelled))
	assert.True(t, Cancelled.IsTerminal())
}

func TestValidate(t *testing.T) {
	o := Order{
		Lines:       []Line{{ProductID: 1, Quantity: 1, UnitPrice: d("3")}},
		Subtotal:    d("3"),
		DeliveryFee: d("2.5"),
		Discount:    d("1"),
		Total:       d("4.5"),
	}
	assert.NoError(t, o.Validate())

	o.Total = d("5")
	assert.ErrorIs(t, o.Validate(), ErrInvalidOrder)
}
