package events

import (
	"context"

	"github.com/gofiber/fiber/v2/log"
)

// LogPublisher writes events to the application log. It is used when no
// broker is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (LogPublisher) Publish(_ context.Context, e Event) error {
	log.Infow("order event",
		"event_id", e.ID.String(),
		"type", string(e.Type),
		"order_id", e.OrderID,
		"status", e.Status,
		"total", e.Total.String(),
	)
	return nil
}

func (LogPublisher) Close() error { return nil }
