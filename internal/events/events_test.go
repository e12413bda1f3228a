package events

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus(nil)

	var received *Event
	var callCount int

	bus.Subscribe(EventTransactionCreated, func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	err := bus.PublishJSON(EventTransactionCreated, TransactionEventPayload{TransactionID: "t1", TotalPrice: 250})
	require.NoError(t, err)

	assert.Equal(t, 1, callCount)
	require.NotNil(t, received)
	assert.Equal(t, EventTransactionCreated, received.Type)
	assert.False(t, received.CreatedAt.IsZero())

	var decoded TransactionEventPayload
	require.NoError(t, received.Decode(&decoded))
	assert.Equal(t, "t1", decoded.TransactionID)
	assert.Equal(t, 250.0, decoded.TotalPrice)
}

func TestEventBus_NoSubscribers(t *testing.T) {
	bus := NewEventBus(nil)
	assert.NoError(t, bus.PublishJSON("nobody_listens", map[string]string{"a": "b"}))
}

func TestEventBus_NilBus(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventTransactionCreated, nil))
}

func TestEventBus_BadPayload(t *testing.T) {
	bus := NewEventBus(nil)
	assert.Error(t, bus.PublishJSON(EventTransactionCreated, make(chan int)))
}

func TestEventBus_HandlerErrorLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	bus := NewEventBus(&logger)

	second := false
	bus.Subscribe(EventReportGenerated, func(*Event) error { return errors.New("boom") })
	bus.Subscribe(EventReportGenerated, func(*Event) error { second = true; return nil })

	require.NoError(t, bus.PublishJSON(EventReportGenerated, ReportEventPayload{Period: "daily"}))
	assert.True(t, second)
	assert.Contains(t, buf.String(), "boom")
	assert.Contains(t, buf.String(), EventReportGenerated)
}
