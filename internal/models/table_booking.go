package models

import "time"

// TableBooking is a restaurant table reservation. Unlike room bookings it
// has no pricing; the restaurant settles on site.
type TableBooking struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Date      time.Time `json:"date"`
	TimeSlot  string    `json:"time_slot"`
	Guests    int       `json:"guests"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
