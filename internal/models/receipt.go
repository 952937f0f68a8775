package models

import "time"

// Receipt is the persisted price breakdown for a booking. Exactly one
// receipt exists per booking; regenerating returns the stored row.
type Receipt struct {
	ID               int64     `json:"id"`
	BookingID        string    `json:"booking_id"`
	ReceiptNumber    string    `json:"receipt_number"`
	PaymentID        string    `json:"payment_id,omitempty"`
	GuestName        string    `json:"guest_name"`
	RoomName         string    `json:"room_name"`
	CheckIn          time.Time `json:"check_in"`
	CheckOut         time.Time `json:"check_out"`
	Nights           int       `json:"nights"`
	PricePerNight    float64   `json:"price_per_night"`
	BasePrice        float64   `json:"base_price"`
	ExtraGuestCharge float64   `json:"extra_guest_charge"`
	BreakfastCharge  float64   `json:"breakfast_charge"`
	CGST             float64   `json:"cgst"`
	SGST             float64   `json:"sgst"`
	Discount         float64   `json:"discount"`
	Total            float64   `json:"total"`
	QRPayload        string    `json:"qr_payload,omitempty"`
	Paid             bool      `json:"paid"`
	CreatedAt        time.Time `json:"created_at"`
}
