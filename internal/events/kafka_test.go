package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisherWithWriter(w)

	driverID := 301
	e := New(OrderDispatched, 201, "On the way", &driverID, decimal.RequireFromString("9.8"), time.Date(2025, 9, 22, 18, 5, 0, 0, time.UTC))
	require.NoError(t, p.Publish(t.Context(), e))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "201", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "order.dispatched", string(msg.Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.Equal(t, 301, *decoded.DriverID)
	assert.True(t, decoded.Total.Equal(e.Total))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := newKafkaPublisherWithWriter(&fakeWriter{err: errors.New("broker down")})
	err := p.Publish(t.Context(), New(OrderCreated, 1, "Pending", nil, decimal.Zero, time.Now()))
	assert.ErrorContains(t, err, "kafka write failed")
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	_ = r.Publish(t.Context(), New(OrderCreated, 1, "Pending", nil, decimal.Zero, time.Now()))
	_ = r.Publish(t.Context(), New(OrderCancelled, 1, "Cancelled", nil, decimal.Zero, time.Now()))
	assert.Equal(t, []Type{OrderCreated, OrderCancelled}, r.Types())
	assert.NotEqual(t, r.Events()[0].ID, r.Events()[1].ID)
}

func TestNewKafkaWriter(t *testing.T) {
	w := newKafkaWriter("order-events", "localhost:9092")
	defer w.Close()

	assert.Equal(t, "order-events", w.Topic)
	assert.Equal(t, publishBatchTimeout, w.BatchTimeout)
	assert.Less(t, w.BatchTimeout, 100*time.Millisecond)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}
