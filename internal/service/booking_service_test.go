package service

import (
	"context"
	"testing"
	"time"

	"royalpalace/internal/database"
	"royalpalace/internal/events"
	"royalpalace/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServices(t *testing.T) (*BookingService, *PromoService, *database.DB) {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	db.SetRooms([]*models.Room{
		{
			ID: 1, Name: "Royal Suite 101", Price: 4000,
			Capacity: 4, Category: models.CategoryRoyalSuite,
			BreakfastPrice: 350, IsAvailable: true, Status: models.RoomAvailable,
		},
		{
			ID: 2, Name: "Deluxe 201", Price: 1500,
			Capacity: 2, Category: models.CategoryRoyalDeluxe,
			BreakfastPrice: 250, IsAvailable: true, Status: models.RoomAvailable,
		},
	})

	bus := events.NewBus(&logger)
	promos := NewPromoService(db, &logger)
	bookings := NewBookingService(db, promos, bus, &logger)
	return bookings, promos, db
}

func futureDate(daysAhead int) time.Time {
	y, m, d := time.Now().AddDate(0, 0, daysAhead).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validRequest() *HotelBookingRequest {
	return &HotelBookingRequest{
		RoomID:    1,
		GuestName: "Arjun Mehta",
		Email:     "arjun@example.com",
		Phone:     "+919876543210",
		CheckIn:   futureDate(10),
		CheckOut:  futureDate(13),
		Adults:    2,
	}
}

func TestCreateHotelBooking(t *testing.T) {
	svc, _, db := setupServices(t)
	ctx := context.Background()

	booking, err := svc.CreateHotelBooking(ctx, validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, models.StatusPending, booking.Status)
	assert.Equal(t, models.BookingTypeOnline, booking.BookingType)
	// 3 nights x 4000, suite base capacity 2 so no extras
	assert.Equal(t, 12000.0, booking.TotalPrice)
	assert.Equal(t, 0, booking.ExtraGuests)

	free, err := db.IsRoomAvailable(ctx, 1, futureDate(10), futureDate(13))
	require.NoError(t, err)
	assert.False(t, free)
}

func TestCreateHotelBooking_ExtraGuestsAndBreakfast(t *testing.T) {
	svc, _, _ := setupServices(t)
	ctx := context.Background()

	req := validRequest()
	req.Adults = 3
	req.Children = 1
	req.WithBreakfast = true

	booking, err := svc.CreateHotelBooking(ctx, req)
	require.NoError(t, err)

	// room 12000 + 1 extra adult x 600 x 3 + breakfast 350 x 4 x 3
	assert.Equal(t, 1, booking.ExtraGuests)
	assert.Equal(t, 12000.0+1800.0+4200.0, booking.TotalPrice)
	assert.True(t, booking.WithBreakfast)
	assert.Equal(t, 4, booking.Guests)
}

func TestCreateHotelBooking_Validation(t *testing.T) {
	svc, _, _ := setupServices(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*HotelBookingRequest)
	}{
		{"EmptyName", func(r *HotelBookingRequest) { r.GuestName = "  " }},
		{"BadEmail", func(r *HotelBookingRequest) { r.Email = "not-an-email" }},
		{"ShortPhone", func(r *HotelBookingRequest) { r.Phone = "123" }},
		{"NoAdults", func(r *HotelBookingRequest) { r.Adults = 0 }},
		{"ReversedDates", func(r *HotelBookingRequest) { r.CheckIn, r.CheckOut = r.CheckOut, r.CheckIn }},
		{"PastCheckIn", func(r *HotelBookingRequest) { r.CheckIn = futureDate(-5); r.CheckOut = futureDate(-2) }},
		{"BadType", func(r *HotelBookingRequest) { r.BookingType = "walk-in" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(req)
			_, err := svc.CreateHotelBooking(ctx, req)
			assert.True(t, IsValidationError(err), "expected validation error, got %v", err)
		})
	}
}

func TestCreateHotelBooking_Unavailable(t *testing.T) {
	svc, _, _ := setupServices(t)
	ctx := context.Background()

	_, err := svc.CreateHotelBooking(ctx, validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.CheckIn = futureDate(12)
	req.CheckOut = futureDate(14)
	_, err = svc.CreateHotelBooking(ctx, req)
	assert.ErrorIs(t, err, database.ErrNotAvailable)
}

func TestCreateHotelBooking_PromoRedeemedOnce(t *testing.T) {
	svc, promos, db := setupServices(t)
	ctx := context.Background()

	_, err := promos.Create(ctx, "SAVE1000", 1000, futureDate(30), 1)
	require.NoError(t, err)

	req := validRequest()
	req.PromoCode = "SAVE1000"
	booking, err := svc.CreateHotelBooking(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 11000.0, booking.TotalPrice)

	promo, err := db.GetPromoCode(ctx, "SAVE1000")
	require.NoError(t, err)
	assert.Equal(t, 1, promo.CurrentUses)

	// Code is spent, next booking is rejected before anything is written
	req2 := validRequest()
	req2.RoomID = 2
	req2.PromoCode = "SAVE1000"
	_, err = svc.CreateHotelBooking(ctx, req2)
	assert.True(t, IsValidationError(err))
}

func TestTransitionBooking(t *testing.T) {
	svc, _, _ := setupServices(t)
	ctx := context.Background()

	booking, err := svc.CreateHotelBooking(ctx, validRequest())
	require.NoError(t, err)

	confirmed, err := svc.TransitionBooking(ctx, booking.ID, models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	// A confirmed booking cannot jump straight to checked out
	_, err = svc.TransitionBooking(ctx, booking.ID, models.StatusCheckedOut)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	checkedIn, err := svc.TransitionBooking(ctx, booking.ID, models.StatusCheckedIn)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckedIn, checkedIn.Status)
}

func TestTransitionBooking_CancelReleasesDays(t *testing.T) {
	svc, _, db := setupServices(t)
	ctx := context.Background()

	booking, err := svc.CreateHotelBooking(ctx, validRequest())
	require.NoError(t, err)

	_, err = svc.TransitionBooking(ctx, booking.ID, models.StatusCancelled)
	require.NoError(t, err)

	free, err := db.IsRoomAvailable(ctx, 1, futureDate(10), futureDate(13))
	require.NoError(t, err)
	assert.True(t, free)
}

func TestCheckoutRoom(t *testing.T) {
	svc, _, _ := setupServices(t)
	ctx := context.Background()

	booking, err := svc.CreateHotelBooking(ctx, validRequest())
	require.NoError(t, err)
	_, err = svc.TransitionBooking(ctx, booking.ID, models.StatusConfirmed)
	require.NoError(t, err)
	_, err = svc.TransitionBooking(ctx, booking.ID, models.StatusCheckedIn)
	require.NoError(t, err)

	out, err := svc.CheckoutRoom(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckedOut, out.Status)

	// Checked out bookings are terminal
	_, err = svc.CheckoutRoom(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDeleteBooking(t *testing.T) {
	svc, _, db := setupServices(t)
	ctx := context.Background()

	booking, err := svc.CreateHotelBooking(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBooking(ctx, booking.ID))

	_, err = db.GetBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	free, err := db.IsRoomAvailable(ctx, 1, futureDate(10), futureDate(13))
	require.NoError(t, err)
	assert.True(t, free)
}

func TestCreateTableBooking(t *testing.T) {
	svc, _, _ := setupServices(t)
	ctx := context.Background()

	booking, err := svc.CreateTableBooking(ctx, &TableBookingRequest{
		Name:     "Priya Sharma",
		Phone:    "+919812345678",
		Date:     futureDate(5),
		TimeSlot: "19:00",
		Guests:   4,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TableBookingPending, booking.Status)

	_, err = svc.CreateTableBooking(ctx, &TableBookingRequest{
		Name: "Priya Sharma", Phone: "+919812345678",
		Date: futureDate(-1), TimeSlot: "19:00", Guests: 2,
	})
	assert.True(t, IsValidationError(err))
}
