package promotion

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("promotion not found")
	ErrPromotionNotFound = errors.New("promotion code not found or not applicable")
	ErrDuplicateCode     = errors.New("promotion code already exists")
	ErrInvalidPromotion  = errors.New("invalid promotion")
)

// Kind selects how a promotion's value is applied.
type Kind string

const (
	Percentage   Kind = "percentage"
	Fixed        Kind = "fixed"
	FreeDelivery Kind = "free_delivery"
)

const dateLayout = "2006-01-02"

type Promotion struct {
	ID    int             `json:"id"`
	Title string          `json:"title"`
	Code  string          `json:"code"`
	Kind  Kind            `json:"type"`
	Value decimal.Decimal `json:"discount"`
	// Active toggles availability independently of ExpiryDate.
	Active     bool   `json:"active"`
	ExpiryDate string `json:"expiryDate"`
}

// NormalizeCode trims and upper-cases a user supplied code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (p Promotion) Validate() error {
	if NormalizeCode(p.Code) == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidPromotion)
	}
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidPromotion)
	}
	if _, err := time.Parse(dateLayout, p.ExpiryDate); err != nil {
		return fmt.Errorf("%w: expiryDate must be YYYY-MM-DD", ErrInvalidPromotion)
	}
	switch p.Kind {
	case Percentage:
		if !p.Value.IsPositive() || p.Value.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("%w: percentage must be in (0, 100]", ErrInvalidPromotion)
		}
	case Fixed:
		if !p.Value.IsPositive() {
			return fmt.Errorf("%w: fixed discount must be positive", ErrInvalidPromotion)
		}
	case FreeDelivery:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidPromotion, p.Kind)
	}
	return nil
}

// Applicable reports whether the promotion is active and not past its expiry
// day. The expiry day itself is still valid.
func (p Promotion) Applicable(now time.Time) bool {
	if !p.Active {
		return false
	}
	return now.UTC().Format(dateLayout) <= p.ExpiryDate
}

// Discount computes the amount taken off an order, clamped to
// [0, subtotal+deliveryFee].
func (p Promotion) Discount(subtotal, deliveryFee decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch p.Kind {
	case Percentage:
		d = subtotal.Mul(p.Value).Div(decimal.NewFromInt(100)).Round(2)
	case FreeDelivery:
		d = deliveryFee
	case Fixed:
		d = p.Value
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	if ceiling := subtotal.Add(deliveryFee); d.GreaterThan(ceiling) {
		return ceiling
	}
	return d
}
