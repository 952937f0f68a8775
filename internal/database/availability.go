package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"royalpalace/internal/models"
)

func dateKey(t time.Time) string {
	return t.Format(models.DateLayout)
}

// UpsertAvailabilityDay writes one (room, date) status row. The unique key
// on (room_id, date) guarantees at most one row per pair; concurrent writers
// get at-least-once upsert semantics, not exactly-once booking confirmation.
func (db *DB) UpsertAvailabilityDay(ctx context.Context, day *models.AvailabilityDay) error {
	query := `INSERT INTO availability_days (room_id, date, status, source, booking_id, notes, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	          ON CONFLICT(room_id, date) DO UPDATE SET
	              status = excluded.status,
	              source = excluded.source,
	              booking_id = excluded.booking_id,
	              notes = excluded.notes,
	              updated_at = excluded.updated_at`
	now := time.Now()
	_, err := db.ExecContext(ctx, query,
		day.RoomID, dateKey(day.Date), day.Status, day.Source,
		nullString(day.BookingID), day.Notes, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert availability day: %w", err)
	}
	return nil
}

// GetDayStatuses returns a date->status map for [from, to). Dates without a
// row are absent from the map and imply available.
func (db *DB) GetDayStatuses(ctx context.Context, roomID int64, from, to time.Time) (map[string]string, error) {
	query := `SELECT date, status FROM availability_days
	          WHERE room_id = ? AND date >= ? AND date < ?`
	rows, err := db.QueryContext(ctx, query, roomID, dateKey(from), dateKey(to))
	if err != nil {
		return nil, fmt.Errorf("failed to get day statuses: %w", err)
	}
	defer rows.Close()

	statuses := make(map[string]string)
	for rows.Next() {
		var date, status string
		if err := rows.Scan(&date, &status); err != nil {
			return nil, fmt.Errorf("failed to scan day status: %w", err)
		}
		statuses[date] = status
	}
	return statuses, rows.Err()
}

// CountBlockingDays counts dates in [checkIn, checkOut) that carry a
// blocking status for the room.
func (db *DB) CountBlockingDays(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM availability_days
	          WHERE room_id = ? AND date >= ? AND date < ? AND status IN (?, ?, ?, ?)`
	var count int
	err := db.QueryRowContext(ctx, query, roomID, dateKey(checkIn), dateKey(checkOut),
		models.DayOnlineBooking, models.DayOfflineBooking, models.DayMaintenance, models.DayUnavailable,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count blocking days: %w", err)
	}
	return count, nil
}

// IsRoomAvailable reports whether every date in [checkIn, checkOut) is free.
func (db *DB) IsRoomAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	count, err := db.CountBlockingDays(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// GetAvailabilityDays returns the stored rows for a room in [from, to).
func (db *DB) GetAvailabilityDays(ctx context.Context, roomID int64, from, to time.Time) ([]*models.AvailabilityDay, error) {
	query := `SELECT id, room_id, date, status, source, booking_id, notes, created_at, updated_at
	          FROM availability_days
	          WHERE room_id = ? AND date >= ? AND date < ? ORDER BY date`
	rows, err := db.QueryContext(ctx, query, roomID, dateKey(from), dateKey(to))
	if err != nil {
		return nil, fmt.Errorf("failed to get availability days: %w", err)
	}
	defer rows.Close()

	return scanAvailabilityDays(rows)
}

// GetBookingDays returns all rows claimed by a booking.
func (db *DB) GetBookingDays(ctx context.Context, bookingID string) ([]*models.AvailabilityDay, error) {
	query := `SELECT id, room_id, date, status, source, booking_id, notes, created_at, updated_at
	          FROM availability_days WHERE booking_id = ? ORDER BY date`
	rows, err := db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking days: %w", err)
	}
	defer rows.Close()

	return scanAvailabilityDays(rows)
}

func scanAvailabilityDays(rows *sql.Rows) ([]*models.AvailabilityDay, error) {
	var days []*models.AvailabilityDay
	for rows.Next() {
		day := &models.AvailabilityDay{}
		var dateStr string
		var bookingID sql.NullString
		var notes sql.NullString
		err := rows.Scan(
			&day.ID, &day.RoomID, &dateStr, &day.Status, &day.Source,
			&bookingID, &notes, &day.CreatedAt, &day.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan availability day: %w", err)
		}
		day.Date, err = time.Parse(models.DateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse availability date %s: %w", dateStr, err)
		}
		day.BookingID = bookingID.String
		day.Notes = notes.String
		days = append(days, day)
	}
	return days, rows.Err()
}

// HasRestrictedDays reports whether the room still has maintenance or
// unavailable days on or after the given date. Used to decide whether the
// room aggregate may flip back to available.
func (db *DB) HasRestrictedDays(ctx context.Context, roomID int64, from time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM availability_days
	          WHERE room_id = ? AND date >= ? AND status IN (?, ?)`
	var count int
	err := db.QueryRowContext(ctx, query, roomID, dateKey(from),
		models.DayMaintenance, models.DayUnavailable).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count restricted days: %w", err)
	}
	return count > 0, nil
}

// InitializeRoomAvailability seeds available rows for the next `days` dates,
// leaving any existing rows untouched.
func (db *DB) InitializeRoomAvailability(ctx context.Context, roomID int64, start time.Time, days int) error {
	query := `INSERT INTO availability_days (room_id, date, status, source, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?)
	          ON CONFLICT(room_id, date) DO NOTHING`
	now := time.Now()
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		if _, err := db.ExecContext(ctx, query,
			roomID, dateKey(date), models.DayAvailable, models.SourceSystem, now, now); err != nil {
			return fmt.Errorf("failed to initialize availability for %s: %w", dateKey(date), err)
		}
	}
	return nil
}

// ReleaseBookingDays returns a booking's claimed dates to the pool. A date
// is handed over to another active booking that covers it when one exists,
// otherwise it becomes available again. Returns the affected room ids.
func (db *DB) ReleaseBookingDays(ctx context.Context, bookingID string, from *time.Time) ([]int64, error) {
	days, err := db.GetBookingDays(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	roomSet := make(map[int64]struct{})
	for _, day := range days {
		if from != nil && day.Date.Before(*from) {
			continue
		}
		roomSet[day.RoomID] = struct{}{}

		claimant, err := db.findActiveClaimant(ctx, day.RoomID, day.Date, bookingID)
		if err != nil {
			return nil, err
		}

		if claimant != nil {
			day.Status = dayStatusForBookingType(claimant.BookingType)
			day.Source = models.SourceBooking
			day.BookingID = claimant.ID
		} else {
			day.Status = models.DayAvailable
			day.Source = models.SourceSystem
			day.BookingID = ""
		}
		if err := db.UpsertAvailabilityDay(ctx, day); err != nil {
			return nil, err
		}
	}

	rooms := make([]int64, 0, len(roomSet))
	for id := range roomSet {
		rooms = append(rooms, id)
	}
	return rooms, nil
}

// findActiveClaimant looks for another non-terminal booking whose stay
// covers the date for the room.
func (db *DB) findActiveClaimant(ctx context.Context, roomID int64, date time.Time, excludeID string) (*models.Booking, error) {
	query := `SELECT id, booking_type FROM bookings
	          WHERE room_id = ? AND id != ?
	            AND check_in <= ? AND check_out > ?
	            AND status NOT IN (?, ?)
	          ORDER BY created_at LIMIT 1`
	var booking models.Booking
	err := db.QueryRowContext(ctx, query, roomID, excludeID, dateKey(date), dateKey(date),
		models.StatusCancelled, models.StatusCheckedOut,
	).Scan(&booking.ID, &booking.BookingType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find claimant booking: %w", err)
	}
	return &booking, nil
}

func dayStatusForBookingType(bookingType string) string {
	if bookingType == models.BookingTypeOffline {
		return models.DayOfflineBooking
	}
	return models.DayOnlineBooking
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
