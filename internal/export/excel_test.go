package export

import (
	"context"
	"testing"
	"time"

	"royalpalace/internal/database"
	"royalpalace/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestOccupancyReport(t *testing.T) {
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	db.SetRooms([]*models.Room{
		{ID: 1, Name: "Royal Suite 101", Category: models.CategoryRoyalSuite},
		{ID: 2, Name: "Deluxe 201", Category: models.CategoryRoyalDeluxe},
	})

	ctx := context.Background()
	from := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 3)

	require.NoError(t, db.UpsertAvailabilityDay(ctx, &models.AvailabilityDay{
		RoomID: 1, Date: from, Status: models.DayOnlineBooking, Source: models.SourceBooking,
	}))

	exporter := NewExcelExporter(db, &logger)
	buf, err := exporter.OccupancyReport(ctx, from, to)
	require.NoError(t, err)
	require.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue("Occupancy", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Royal Suite 101", name)

	status, err := f.GetCellValue("Occupancy", "B2")
	require.NoError(t, err)
	assert.Equal(t, models.RoomBooked, status)

	free, err := f.GetCellValue("Occupancy", "C2")
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, free)
}
