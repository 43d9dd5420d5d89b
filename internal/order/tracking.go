package order

import "time"

type Step struct {
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

// Tracking is the customer-facing progress view. It is derived on request
// and never stored.
type Tracking struct {
	OrderID             int       `json:"orderId"`
	Status              Status    `json:"status"`
	DriverID            *int      `json:"driverId,omitempty"`
	EstimatedDeliveryAt time.Time `json:"estimatedDelivery"`
	RemainingMinutes    int       `json:"remainingMinutes"`
	Steps               []Step    `json:"steps"`
}

var stepLabels = []string{"Order Confirmed", "Preparing Order", "Out for Delivery", "Delivered"}

func progress(s Status) int {
	switch s {
	case Pending:
		return 1
	case Preparing:
		return 2
	case OnTheWay:
		return 3
	case Delivered:
		return 4
	}
	return 0
}

// TrackingFor computes the countdown as max(0, floor((eta-now)/minute)).
func TrackingFor(o Order, now time.Time) Tracking {
	remaining := 0
	if !o.Status.IsTerminal() {
		if left := o.EstimatedDeliveryAt.Sub(now); left > 0 {
			remaining = int(left / time.Minute)
		}
	}

	done := progress(o.Status)
	steps := make([]Step, len(stepLabels))
	for i, label := range stepLabels {
		steps[i] = Step{Label: label, Done: i < done}
	}

	return Tracking{
		OrderID:             o.ID,
		Status:              o.Status,
		DriverID:            o.DriverID,
		EstimatedDeliveryAt: o.EstimatedDeliveryAt,
		RemainingMinutes:    remaining,
		Steps:               steps,
	}
}
