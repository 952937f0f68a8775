package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"royalpalace/internal/models"
)

// CreateBookingWithLock inserts a booking and claims its availability days
// inside a single transaction. The availability range is re-checked within
// the transaction so that two writers racing for the same dates cannot both
// commit against a clean calendar read taken earlier.
func (db *DB) CreateBookingWithLock(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	checkQuery := `SELECT COUNT(*) FROM availability_days
	               WHERE room_id = ? AND date >= ? AND date < ? AND status IN (?, ?, ?, ?)`
	var blocked int
	err = tx.QueryRowContext(ctx, checkQuery,
		booking.RoomID, dateKey(booking.CheckIn), dateKey(booking.CheckOut),
		models.DayOnlineBooking, models.DayOfflineBooking, models.DayMaintenance, models.DayUnavailable,
	).Scan(&blocked)
	if err != nil {
		return fmt.Errorf("failed to check availability: %w", err)
	}
	if blocked > 0 {
		return ErrNotAvailable
	}

	now := time.Now()
	insertQuery := `INSERT INTO bookings (id, room_id, room_name, guest_name, email, phone,
	                    check_in, check_out, guests, adults, children, total_price,
	                    status, payment_status, payment_id, booking_type, with_breakfast,
	                    extra_guests, room_count, promo_code, created_at, updated_at, version)
	                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`
	_, err = tx.ExecContext(ctx, insertQuery,
		booking.ID, booking.RoomID, booking.RoomName, booking.GuestName, booking.Email, booking.Phone,
		dateKey(booking.CheckIn), dateKey(booking.CheckOut), booking.Guests, booking.Adults,
		booking.Children, booking.TotalPrice, booking.Status, booking.PaymentStatus,
		nullString(booking.PaymentID), booking.BookingType, booking.WithBreakfast,
		booking.ExtraGuests, booking.RoomCount, nullString(booking.PromoCode), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	dayStatus := dayStatusForBookingType(booking.BookingType)
	dayQuery := `INSERT INTO availability_days (room_id, date, status, source, booking_id, created_at, updated_at)
	             VALUES (?, ?, ?, ?, ?, ?, ?)
	             ON CONFLICT(room_id, date) DO UPDATE SET
	                 status = excluded.status,
	                 source = excluded.source,
	                 booking_id = excluded.booking_id,
	                 updated_at = excluded.updated_at`
	for d := booking.CheckIn; d.Before(booking.CheckOut); d = d.AddDate(0, 0, 1) {
		_, err = tx.ExecContext(ctx, dayQuery,
			booking.RoomID, dateKey(d), dayStatus, models.SourceBooking, booking.ID, now, now)
		if err != nil {
			return fmt.Errorf("failed to claim day %s: %w", dateKey(d), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	return nil
}

const bookingColumns = `id, room_id, room_name, guest_name, email, phone,
	check_in, check_out, guests, adults, children, total_price,
	status, payment_status, payment_id, booking_type, with_breakfast,
	extra_guests, room_count, promo_code, created_at, updated_at, version`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	booking := &models.Booking{}
	var checkIn, checkOut string
	var paymentID, promoCode sql.NullString
	err := row.Scan(
		&booking.ID, &booking.RoomID, &booking.RoomName, &booking.GuestName,
		&booking.Email, &booking.Phone, &checkIn, &checkOut,
		&booking.Guests, &booking.Adults, &booking.Children, &booking.TotalPrice,
		&booking.Status, &booking.PaymentStatus, &paymentID, &booking.BookingType,
		&booking.WithBreakfast, &booking.ExtraGuests, &booking.RoomCount, &promoCode,
		&booking.CreatedAt, &booking.UpdatedAt, &booking.Version,
	)
	if err != nil {
		return nil, err
	}
	booking.PaymentID = paymentID.String
	booking.PromoCode = promoCode.String
	if booking.CheckIn, err = time.Parse(models.DateLayout, checkIn); err != nil {
		return nil, fmt.Errorf("failed to parse check-in %s: %w", checkIn, err)
	}
	if booking.CheckOut, err = time.Parse(models.DateLayout, checkOut); err != nil {
		return nil, fmt.Errorf("failed to parse check-out %s: %w", checkOut, err)
	}
	return booking, nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// UpdateBookingStatusWithVersion transitions a booking while guarding
// against concurrent writers with an optimistic version check. A zero row
// count means someone else changed the booking first.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, status string, version int64) error {
	query := `UPDATE bookings SET status = ?, updated_at = ?, version = version + 1
	          WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id, version)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		if _, getErr := db.GetBooking(ctx, id); errors.Is(getErr, ErrNotFound) {
			return ErrNotFound
		}
		return ErrConcurrentModification
	}
	return nil
}

func (db *DB) UpdateBookingPayment(ctx context.Context, id, paymentStatus, paymentID string) error {
	query := `UPDATE bookings SET payment_status = ?, payment_id = ?, updated_at = ?, version = version + 1
	          WHERE id = ?`
	result, err := db.ExecContext(ctx, query, paymentStatus, nullString(paymentID), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking payment: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeleteBooking(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) ListBookings(ctx context.Context, statuses ...string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (?` + repeatPlaceholders(len(statuses)-1) + `)`
		for _, s := range statuses {
			args = append(args, s)
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// GetBookingsByDateRange returns bookings whose stay overlaps [from, to).
func (db *DB) GetBookingsByDateRange(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE check_in < ? AND check_out > ? AND status NOT IN (?, ?)
	          ORDER BY check_in`
	rows, err := db.QueryContext(ctx, query, dateKey(to), dateKey(from),
		models.StatusCancelled, models.StatusCheckedOut)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings by date range: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func collectBookings(rows *sql.Rows) ([]*models.Booking, error) {
	var bookings []*models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func repeatPlaceholders(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += ", ?"
	}
	return s
}
