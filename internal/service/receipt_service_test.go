package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"royalpalace/internal/database"
	"royalpalace/internal/events"
	"royalpalace/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReceiptService(t *testing.T) (*ReceiptService, *BookingService, *database.DB) {
	t.Helper()
	bookings, _, db := setupServices(t)
	logger := zerolog.Nop()
	bus := events.NewBus(&logger)
	receipts := NewReceiptService(db, bus, &logger, "https://royalpalace.example")
	return receipts, bookings, db
}

func TestReceiptNumber(t *testing.T) {
	at := time.Date(2026, 9, 15, 14, 30, 0, 0, time.UTC)
	number := ReceiptNumber("a1b2c3d4-e5f6-7890-abcd-ef0123456789", at)
	assert.Equal(t, "RP-20260915-A1B2C3", number)
}

func TestGenerateReceipt(t *testing.T) {
	receipts, bookings, _ := setupReceiptService(t)
	ctx := context.Background()

	req := validRequest()
	req.WithBreakfast = true
	booking, err := bookings.CreateHotelBooking(ctx, req)
	require.NoError(t, err)

	receipt, err := receipts.GenerateReceipt(ctx, booking.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, receipt.Nights)
	assert.Equal(t, 4000.0, receipt.PricePerNight)
	assert.Equal(t, 12000.0, receipt.BasePrice)
	// 350 x 2 guests x 3 nights
	assert.Equal(t, 2100.0, receipt.BreakfastCharge)
	assert.Equal(t, 0.0, receipt.Discount)
	assert.Equal(t, booking.TotalPrice, receipt.Total)

	// Tax is informational: total stays the charged amount
	assert.InDelta(t, receipt.BasePrice*0.061, receipt.CGST, 0.01)
	assert.Equal(t, receipt.CGST, receipt.SGST)

	assert.True(t, strings.HasPrefix(receipt.ReceiptNumber, "RP-"))
	assert.Contains(t, receipt.QRPayload, "/receipts/"+receipt.ReceiptNumber)
}

func TestGenerateReceipt_Idempotent(t *testing.T) {
	receipts, bookings, _ := setupReceiptService(t)
	ctx := context.Background()

	booking, err := bookings.CreateHotelBooking(ctx, validRequest())
	require.NoError(t, err)

	first, err := receipts.GenerateReceipt(ctx, booking.ID)
	require.NoError(t, err)
	second, err := receipts.GenerateReceipt(ctx, booking.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ReceiptNumber, second.ReceiptNumber)
}

func TestGenerateReceipt_DiscountLine(t *testing.T) {
	receipts, bookings, db := setupReceiptService(t)
	ctx := context.Background()

	logger := zerolog.Nop()
	promos := NewPromoService(db, &logger)
	_, err := promos.Create(ctx, "FEST500", 500, futureDate(30), 5)
	require.NoError(t, err)

	req := validRequest()
	req.PromoCode = "FEST500"
	booking, err := bookings.CreateHotelBooking(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 11500.0, booking.TotalPrice)

	receipt, err := receipts.GenerateReceipt(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, receipt.Discount)
	assert.Equal(t, 11500.0, receipt.Total)
}

func TestGenerateReceipt_NotFound(t *testing.T) {
	receipts, _, _ := setupReceiptService(t)
	_, err := receipts.GenerateReceipt(context.Background(), "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRenderText(t *testing.T) {
	receipts, _, _ := setupReceiptService(t)

	receipt := &models.Receipt{
		ReceiptNumber:   "RP-20260915-A1B2C3",
		GuestName:       "Arjun Mehta",
		RoomName:        "Royal Suite 101",
		CheckIn:         time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:        time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC),
		Nights:          3,
		PricePerNight:   4000,
		BasePrice:       12000,
		BreakfastCharge: 2100,
		CGST:            732,
		SGST:            732,
		Discount:        500,
		Total:           13600,
		QRPayload:       "https://royalpalace.example/receipts/RP-20260915-A1B2C3",
		Paid:            true,
		CreatedAt:       time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
	}

	text := receipts.RenderText(receipt)
	assert.Contains(t, text, "ROYAL PALACE")
	assert.Contains(t, text, "RP-20260915-A1B2C3")
	assert.Contains(t, text, "Breakfast")
	assert.Contains(t, text, "-"+fmt.Sprintf("Rs %.2f", 500.0))
	assert.Contains(t, text, "CGST @ 6.1% (included)")
	assert.Contains(t, text, "* PAID *")
	assert.Contains(t, text, "Verify: https://royalpalace.example/receipts/RP-20260915-A1B2C3")
}
