// Package pricing implements the stay price rules: per-night pricing with
// extra-guest and breakfast surcharges, plus the CGST/SGST breakdown.
package pricing

import (
	"math"
	"time"

	"royalpalace/internal/models"
)

// Quote is the full price breakdown for a stay. CGST and SGST are computed
// for records only; Total always equals RoomTotal. The source product never
// charged tax on top and that behavior is preserved exactly.
type Quote struct {
	Nights           int     `json:"nights"`
	PricePerNight    float64 `json:"price_per_night"`
	BasePrice        float64 `json:"base_price"`
	ExtraGuests      int     `json:"extra_guests"`
	ExtraGuestCharge float64 `json:"extra_guest_charge"`
	BreakfastCharge  float64 `json:"breakfast_charge"`
	RoomTotal        float64 `json:"room_total"`
	CGST             float64 `json:"cgst"`
	SGST             float64 `json:"sgst"`
	Total            float64 `json:"total"`
}

// Nights returns the stay length in nights, rounding the span to whole days
// with a one-night floor. A same-day range still bills one night.
func Nights(checkIn, checkOut time.Time) int {
	days := math.Abs(checkOut.Sub(checkIn).Hours() / 24)
	nights := int(math.Round(days))
	if nights < 1 {
		nights = 1
	}
	return nights
}

// ExtraGuestCount returns how many adults exceed the room's base capacity.
func ExtraGuestCount(adults int, room *models.Room) int {
	extra := adults - room.BaseCapacity()
	if extra < 0 {
		return 0
	}
	return extra
}

// CalculateTotalPrice computes the charged total for a stay: nightly price
// times nights plus the fixed extra-guest surcharge per night.
func CalculateTotalPrice(nightlyPrice float64, checkIn, checkOut time.Time, extraGuests int) float64 {
	nights := Nights(checkIn, checkOut)
	base := nightlyPrice * float64(nights)
	surcharge := float64(extraGuests) * models.ExtraGuestRate * float64(nights)
	return base + surcharge
}

// BreakfastCharge computes the optional breakfast surcharge for the whole
// stay. It is tracked as its own receipt line, not folded into the room total.
func BreakfastCharge(pricePerPerson float64, totalGuests, nights int) float64 {
	return pricePerPerson * float64(totalGuests) * float64(nights)
}

// QuoteStay builds the full breakdown for a stay in one room.
func QuoteStay(room *models.Room, checkIn, checkOut time.Time, adults, totalGuests int, withBreakfast bool) Quote {
	nights := Nights(checkIn, checkOut)
	extra := ExtraGuestCount(adults, room)

	base := room.Price * float64(nights)
	surcharge := float64(extra) * models.ExtraGuestRate * float64(nights)
	roomTotal := base + surcharge

	q := Quote{
		Nights:           nights,
		PricePerNight:    room.Price,
		BasePrice:        base,
		ExtraGuests:      extra,
		ExtraGuestCharge: surcharge,
		RoomTotal:        roomTotal,
		CGST:             RoundMoney(roomTotal * models.TaxRate),
		SGST:             RoundMoney(roomTotal * models.TaxRate),
		Total:            roomTotal,
	}

	if withBreakfast {
		q.BreakfastCharge = BreakfastCharge(room.BreakfastPrice, totalGuests, nights)
	}

	return q
}

// ApplyDiscount subtracts a promo discount from an amount, clamping the
// discount so the final amount never goes negative.
func ApplyDiscount(amount, discount float64) (applied, final float64) {
	if discount > amount {
		discount = amount
	}
	if discount < 0 {
		discount = 0
	}
	return discount, amount - discount
}

// RoundMoney rounds to two decimal places (paise).
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
