package service

import (
	"context"
	"testing"

	"royalpalace/internal/database"
	"royalpalace/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAvailabilityService(t *testing.T) (*AvailabilityService, *database.DB) {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	db.SetRooms([]*models.Room{
		{ID: 1, Name: "Royal Suite 101", Price: 4000, Category: models.CategoryRoyalSuite, IsAvailable: true, Status: models.RoomAvailable},
		{ID: 2, Name: "Deluxe 201", Price: 1500, Category: models.CategoryRoyalDeluxe, IsAvailable: true, Status: models.RoomAvailable},
	})
	return NewAvailabilityService(db, &logger), db
}

func TestGetAvailableRooms(t *testing.T) {
	svc, _ := setupAvailabilityService(t)
	ctx := context.Background()

	// No rows at all: everything is available
	rooms, err := svc.GetAvailableRooms(ctx, futureDate(10), futureDate(12))
	require.NoError(t, err)
	assert.Len(t, rooms, 2)

	// Block one night of room 1 inside the range
	require.NoError(t, svc.BulkUpdateAvailability(ctx, []int64{1},
		futureDate(11), futureDate(12), models.DayMaintenance, models.SourceAdmin, "plumbing"))

	rooms, err = svc.GetAvailableRooms(ctx, futureDate(10), futureDate(12))
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, int64(2), rooms[0].ID)

	// The blocked night is outside a shifted range, room 1 comes back
	rooms, err = svc.GetAvailableRooms(ctx, futureDate(12), futureDate(14))
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}

func TestResolveDisplayStatus(t *testing.T) {
	svc, db := setupAvailabilityService(t)
	ctx := context.Background()

	// Empty range resolves to available
	status, err := svc.ResolveDisplayStatus(ctx, 1, futureDate(10), futureDate(15))
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, status)

	days := []struct {
		offset int
		status string
	}{
		{10, models.DayOnlineBooking},
		{11, models.DayUnavailable},
		{12, models.DayMaintenance},
	}
	for _, d := range days {
		require.NoError(t, db.UpsertAvailabilityDay(ctx, &models.AvailabilityDay{
			RoomID: 1, Date: futureDate(d.offset), Status: d.status, Source: models.SourceAdmin,
		}))
	}

	// Maintenance has the highest priority across the range
	status, err = svc.ResolveDisplayStatus(ctx, 1, futureDate(10), futureDate(15))
	require.NoError(t, err)
	assert.Equal(t, models.RoomMaintenance, status)

	// A range touching only the booked date shows "booked"
	status, err = svc.ResolveDisplayStatus(ctx, 1, futureDate(10), futureDate(11))
	require.NoError(t, err)
	assert.Equal(t, models.RoomBooked, status)
}

func TestGetRoomCalendar(t *testing.T) {
	svc, db := setupAvailabilityService(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertAvailabilityDay(ctx, &models.AvailabilityDay{
		RoomID: 1, Date: futureDate(11), Status: models.DayOfflineBooking, Source: models.SourceBooking,
	}))

	calendar, err := svc.GetRoomCalendar(ctx, 1, futureDate(10), futureDate(13))
	require.NoError(t, err)
	require.Len(t, calendar, 3)
	assert.Equal(t, models.RoomAvailable, calendar[futureDate(10).Format(models.DateLayout)])
	assert.Equal(t, models.RoomBooked, calendar[futureDate(11).Format(models.DateLayout)])
	assert.Equal(t, models.RoomAvailable, calendar[futureDate(12).Format(models.DateLayout)])
}

func TestBulkUpdateAvailability_AggregateFlip(t *testing.T) {
	svc, db := setupAvailabilityService(t)
	ctx := context.Background()

	require.NoError(t, svc.BulkUpdateAvailability(ctx, []int64{1},
		futureDate(10), futureDate(12), models.DayMaintenance, models.SourceAdmin, ""))

	room, err := db.GetRoomByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RoomMaintenance, room.Status)
	assert.False(t, room.IsAvailable)

	// Clearing only one of the two maintenance days must not flip the room back
	require.NoError(t, svc.BulkUpdateAvailability(ctx, []int64{1},
		futureDate(10), futureDate(11), models.DayAvailable, models.SourceAdmin, ""))

	room, err = db.GetRoomByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, room.IsAvailable)

	// Clearing the last one does
	require.NoError(t, svc.BulkUpdateAvailability(ctx, []int64{1},
		futureDate(11), futureDate(12), models.DayAvailable, models.SourceAdmin, ""))

	room, err = db.GetRoomByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, room.Status)
	assert.True(t, room.IsAvailable)
}

func TestBulkUpdateAvailability_Validation(t *testing.T) {
	svc, _ := setupAvailabilityService(t)
	ctx := context.Background()

	err := svc.BulkUpdateAvailability(ctx, []int64{1},
		futureDate(10), futureDate(12), "bogus", models.SourceAdmin, "")
	assert.True(t, IsValidationError(err))

	err = svc.BulkUpdateAvailability(ctx, []int64{1},
		futureDate(12), futureDate(10), models.DayAvailable, models.SourceAdmin, "")
	assert.True(t, IsValidationError(err))

	err = svc.BulkUpdateAvailability(ctx, []int64{99},
		futureDate(10), futureDate(12), models.DayAvailable, models.SourceAdmin, "")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestInitializeRoomAvailability(t *testing.T) {
	svc, db := setupAvailabilityService(t)
	ctx := context.Background()

	require.NoError(t, svc.InitializeRoomAvailability(ctx, 1, 30))

	statuses, err := db.GetDayStatuses(ctx, 1, today(), today().AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.Len(t, statuses, 30)
}
