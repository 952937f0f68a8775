package models

import "time"

type Booking struct {
	ID            string    `json:"id"`
	RoomID        int64     `json:"room_id"`
	RoomName      string    `json:"room_name"`
	GuestName     string    `json:"guest_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	Guests        int       `json:"guests"`
	Adults        int       `json:"adults"`
	Children      int       `json:"children"`
	TotalPrice    float64   `json:"total_price"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	PaymentID     string    `json:"payment_id,omitempty"`
	BookingType   string    `json:"booking_type"`
	WithBreakfast bool      `json:"with_breakfast"`
	ExtraGuests   int       `json:"extra_guests"`
	RoomCount     int       `json:"room_count"`
	PromoCode     string    `json:"promo_code,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Version       int64     `json:"version"`
}

// transitions lists the allowed booking status moves. Transitions must be
// explicit; nothing is inferred from payment state.
var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn: {StatusCheckedOut},
}

// CanTransition reports whether a booking may move from its current status to next.
func (b *Booking) CanTransition(next string) bool {
	for _, s := range transitions[b.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the booking reached a final state.
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCheckedOut || b.Status == StatusCancelled
}

// IsActive reports whether the booking still holds its availability claims.
func (b *Booking) IsActive() bool {
	return !b.IsTerminal()
}
