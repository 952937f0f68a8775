package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"royalpalace/internal/models"
)

func (db *DB) CreateTableBooking(ctx context.Context, booking *models.TableBooking) error {
	query := `INSERT INTO table_bookings (name, phone, email, date, time_slot, guests, status, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		booking.Name, booking.Phone, nullString(booking.Email),
		dateKey(booking.Date), booking.TimeSlot, booking.Guests, booking.Status, now, now)
	if err != nil {
		return fmt.Errorf("failed to create table booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (db *DB) GetTableBooking(ctx context.Context, id int64) (*models.TableBooking, error) {
	query := `SELECT id, name, phone, email, date, time_slot, guests, status, created_at, updated_at
	          FROM table_bookings WHERE id = ?`
	booking, err := scanTableBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get table booking: %w", err)
	}
	return booking, nil
}

func (db *DB) ListTableBookingsByDate(ctx context.Context, date time.Time) ([]*models.TableBooking, error) {
	query := `SELECT id, name, phone, email, date, time_slot, guests, status, created_at, updated_at
	          FROM table_bookings WHERE date = ? ORDER BY time_slot, id`
	rows, err := db.QueryContext(ctx, query, dateKey(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list table bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.TableBooking
	for rows.Next() {
		booking, err := scanTableBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func (db *DB) UpdateTableBookingStatus(ctx context.Context, id int64, status string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE table_bookings SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update table booking status: %w", err)
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

func scanTableBooking(row interface{ Scan(...any) error }) (*models.TableBooking, error) {
	booking := &models.TableBooking{}
	var date string
	var email sql.NullString
	err := row.Scan(
		&booking.ID, &booking.Name, &booking.Phone, &email, &date,
		&booking.TimeSlot, &booking.Guests, &booking.Status,
		&booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.Email = email.String
	if booking.Date, err = time.Parse(models.DateLayout, date); err != nil {
		return nil, fmt.Errorf("failed to parse table booking date: %w", err)
	}
	return booking, nil
}
