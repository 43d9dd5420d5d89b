package promotion

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var fixedNow = time.Date(2025, 9, 22, 18, 0, 0, 0, time.UTC)

func seedPromotions() []Promotion {
	return []Promotion{
		{ID: 1, Title: "Welcome Discount", Code: "WELCOME10", Kind: Percentage, Value: d("10"), Active: true, ExpiryDate: "2025-12-31"},
		{ID: 2, Title: "Free Delivery", Code: "FREEDEL", Kind: FreeDelivery, Value: decimal.Zero, Active: true, ExpiryDate: "2025-10-31"},
		{ID: 3, Title: "Summer", Code: "SUMMER5", Kind: Fixed, Value: d("5"), Active: false, ExpiryDate: "2025-12-31"},
		{ID: 4, Title: "Old", Code: "OLD", Kind: Fixed, Value: d("1"), Active: true, ExpiryDate: "2025-09-21"},
	}
}

func newService() *Service {
	return NewService(NewInMemoryRepository(seedPromotions())).WithClock(func() time.Time { return fixedNow })
}

func TestDiscount(t *testing.T) {
	fee := d("2.5")
	cases := []struct {
		name     string
		promo    Promotion
		subtotal string
		want     string
	}{
		{"percentage", Promotion{Kind: Percentage, Value: d("10")}, "9.0", "0.9"},
		{"percentage rounds", Promotion{Kind: Percentage, Value: d("15")}, "3.33", "0.5"},
		{"free delivery", Promotion{Kind: FreeDelivery}, "9.0", "2.5"},
		{"fixed", Promotion{Kind: Fixed, Value: d("5")}, "9.0", "5"},
		{"fixed clamped", Promotion{Kind: Fixed, Value: d("50")}, "9.0", "11.5"},
		{"empty cart", Promotion{Kind: Percentage, Value: d("10")}, "0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.promo.Discount(d(tc.subtotal), fee)
			assert.True(t, got.Equal(d(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestApplicable(t *testing.T) {
	p := Promotion{Active: true, ExpiryDate: "2025-09-22"}
	assert.True(t, p.Applicable(fixedNow), "expiry day itself is valid")
	assert.False(t, p.Applicable(fixedNow.Add(24*time.Hour)))
	p.Active = false
	assert.False(t, p.Applicable(fixedNow))
}

func TestLookup(t *testing.T) {
	svc := newService()
	ctx := t.Context()

	p, err := svc.Lookup(ctx, "  welcome10 ")
	require.NoError(t, err)
	assert.Equal(t, 1, p.ID)

	for _, code := range []string{"NOPE", "SUMMER5", "OLD"} {
		_, err := svc.Lookup(ctx, code)
		assert.ErrorIs(t, err, ErrPromotionNotFound, code)
	}
}

func TestCreate(t *testing.T) {
	svc := newService()
	ctx := t.Context()

	created, err := svc.Create(ctx, Promotion{Title: "Ten off", Code: "ten", Kind: Fixed, Value: d("10"), Active: true, ExpiryDate: "2026-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "TEN", created.Code)
	assert.Equal(t, 5, created.ID)

	_, err = svc.Create(ctx, Promotion{Title: "Again", Code: "welcome10", Kind: Fixed, Value: d("1"), ExpiryDate: "2026-01-01"})
	assert.ErrorIs(t, err, ErrDuplicateCode)

	invalid := []Promotion{
		{Title: "x", Code: "A", Kind: Percentage, Value: d("0"), ExpiryDate: "2026-01-01"},
		{Title: "x", Code: "B", Kind: Percentage, Value: d("120"), ExpiryDate: "2026-01-01"},
		{Title: "x", Code: "C", Kind: Fixed, Value: d("-1"), ExpiryDate: "2026-01-01"},
		{Title: "x", Code: "D", Kind: "bogus", Value: d("1"), ExpiryDate: "2026-01-01"},
		{Title: "x", Code: "E", Kind: Fixed, Value: d("1"), ExpiryDate: "tomorrow"},
		{Title: "x", Code: " ", Kind: Fixed, Value: d("1"), ExpiryDate: "2026-01-01"},
	}
	for _, p := range invalid {
		_, err := svc.Create(ctx, p)
		assert.ErrorIs(t, err, ErrInvalidPromotion, p.Code)
	}
}

func TestSetActiveDeleteAndCount(t *testing.T) {
	svc := newService()
	ctx := t.Context()

	n, err := svc.ActiveCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = svc.SetActive(ctx, 1, false)
	require.NoError(t, err)
	_, err = svc.Lookup(ctx, "WELCOME10")
	assert.ErrorIs(t, err, ErrPromotionNotFound)

	require.NoError(t, svc.Delete(ctx, 2))
	assert.ErrorIs(t, svc.Delete(ctx, 2), ErrNotFound)

	n, _ = svc.ActiveCount(ctx)
	assert.Equal(t, 0, n)

	_, err = svc.SetActive(ctx, 99, true)
	assert.ErrorIs(t, err, ErrNotFound)
}
