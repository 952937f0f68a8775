package pricing

import (
	"testing"
	"time"

	"royalpalace/internal/models"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNights(t *testing.T) {
	day1 := date(2026, 3, 10)

	// Same-day range still bills one night
	assert.Equal(t, 1, Nights(day1, day1))

	assert.Equal(t, 1, Nights(day1, day1.AddDate(0, 0, 1)))
	assert.Equal(t, 3, Nights(day1, day1.AddDate(0, 0, 3)))

	// Reversed range is treated by magnitude
	assert.Equal(t, 2, Nights(day1.AddDate(0, 0, 2), day1))
}

func TestCalculateTotalPrice(t *testing.T) {
	day1 := date(2026, 3, 10)

	t.Run("SameDayFloor", func(t *testing.T) {
		total := CalculateTotalPrice(1000, day1, day1, 0)
		assert.Equal(t, 1000.0, total)
	})

	t.Run("ThreeNights", func(t *testing.T) {
		total := CalculateTotalPrice(1000, day1, day1.AddDate(0, 0, 3), 0)
		assert.Equal(t, 3000.0, total)
	})

	t.Run("ExtraGuestSurcharge", func(t *testing.T) {
		base := CalculateTotalPrice(1000, day1, day1.AddDate(0, 0, 3), 0)
		withExtras := CalculateTotalPrice(1000, day1, day1.AddDate(0, 0, 3), 2)
		// 2 guests x 600 x 3 nights
		assert.Equal(t, 3600.0, withExtras-base)
	})
}

func TestExtraGuestCount(t *testing.T) {
	deluxe := &models.Room{Category: models.CategoryRoyalDeluxe}
	suite := &models.Room{Category: models.CategoryRoyalSuite}

	assert.Equal(t, 0, ExtraGuestCount(1, deluxe))
	assert.Equal(t, 1, ExtraGuestCount(2, deluxe))
	assert.Equal(t, 0, ExtraGuestCount(2, suite))
	assert.Equal(t, 2, ExtraGuestCount(4, suite))
	assert.Equal(t, 0, ExtraGuestCount(0, suite))
}

func TestQuoteStay_TaxIsInformational(t *testing.T) {
	room := &models.Room{Price: 5000, Category: models.CategoryRoyalExecutive, BreakfastPrice: 350}
	day1 := date(2026, 3, 10)

	q := QuoteStay(room, day1, day1.AddDate(0, 0, 2), 3, 3, false)

	assert.Equal(t, 2, q.Nights)
	assert.Equal(t, 10000.0, q.BasePrice)
	assert.Equal(t, 1, q.ExtraGuests)
	assert.Equal(t, 1200.0, q.ExtraGuestCharge)
	assert.Equal(t, 11200.0, q.RoomTotal)

	// CGST/SGST at 6.1% each are stored but never charged
	assert.Equal(t, RoundMoney(11200*0.061), q.CGST)
	assert.Equal(t, q.CGST, q.SGST)
	assert.Equal(t, q.RoomTotal, q.Total)
}

func TestQuoteStay_Breakfast(t *testing.T) {
	room := &models.Room{Price: 4000, Category: models.CategoryRoyalSuite, BreakfastPrice: 350}
	day1 := date(2026, 3, 10)

	q := QuoteStay(room, day1, day1.AddDate(0, 0, 2), 2, 4, true)

	// 350 per person x 4 guests x 2 nights, tracked separately
	assert.Equal(t, 2800.0, q.BreakfastCharge)
	assert.Equal(t, q.RoomTotal, q.Total)
}

func TestApplyDiscount(t *testing.T) {
	t.Run("Normal", func(t *testing.T) {
		applied, final := ApplyDiscount(1000, 200)
		assert.Equal(t, 200.0, applied)
		assert.Equal(t, 800.0, final)
	})

	t.Run("ClampedToAmount", func(t *testing.T) {
		applied, final := ApplyDiscount(500, 800)
		assert.Equal(t, 500.0, applied)
		assert.Equal(t, 0.0, final)
	})

	t.Run("NegativeDiscountIgnored", func(t *testing.T) {
		applied, final := ApplyDiscount(500, -100)
		assert.Equal(t, 0.0, applied)
		assert.Equal(t, 500.0, final)
	})
}
