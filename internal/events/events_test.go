package events

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestBusFanOut(t *testing.T) {
	logger := zerolog.Nop()
	bus := NewBus(&logger)

	var created, all []string
	bus.Subscribe(TypeBookingCreated, func(_ context.Context, e Event) {
		created = append(created, e.BookingID)
	})
	bus.Subscribe("", func(_ context.Context, e Event) {
		all = append(all, e.Type)
	})

	bus.Publish(context.Background(), Event{Type: TypeBookingCreated, BookingID: "b1"})
	bus.Publish(context.Background(), Event{Type: TypeBookingCancelled, BookingID: "b2"})

	assert.Equal(t, []string{"b1"}, created)
	assert.Equal(t, []string{TypeBookingCreated, TypeBookingCancelled}, all)
}

func TestBusStampsTime(t *testing.T) {
	logger := zerolog.Nop()
	bus := NewBus(&logger)

	var got Event
	bus.Subscribe(TypeReceiptGenerated, func(_ context.Context, e Event) { got = e })
	bus.Publish(context.Background(), Event{Type: TypeReceiptGenerated})

	assert.False(t, got.At.IsZero())
}
