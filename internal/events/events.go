package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	TypeBookingCreated    = "booking_created"
	TypeBookingConfirmed  = "booking_confirmed"
	TypeBookingCancelled  = "booking_cancelled"
	TypeBookingCheckedIn  = "booking_checked_in"
	TypeBookingCheckedOut = "booking_checked_out"
	TypeReceiptGenerated  = "receipt_generated"
	TypeTableBooked       = "table_booked"
)

// Event is an in-process notification about a state change.
type Event struct {
	Type      string
	BookingID string
	RoomID    int64
	Payload   map[string]any
	At        time.Time
}

// Handler receives events. Handlers must not block; long work belongs in the
// handler's own goroutine or queue.
type Handler func(ctx context.Context, e Event)

// Bus is a small synchronous fan-out bus. Subscriptions happen during
// startup; publishing is safe from any goroutine afterwards.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zerolog.Logger
}

func NewBus(logger *zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for one event type. An empty type
// subscribes to all events.
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

func (b *Bus) Publish(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[e.Type]...)
	handlers = append(handlers, b.handlers[""]...)
	b.mu.RUnlock()

	b.logger.Debug().
		Str("event", e.Type).
		Str("booking_id", e.BookingID).
		Int("handlers", len(handlers)).
		Msg("publishing event")

	for _, h := range handlers {
		h(ctx, e)
	}
}
