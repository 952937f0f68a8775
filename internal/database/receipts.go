package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"royalpalace/internal/models"
)

// CreateReceipt stores a receipt for a booking. Receipts are idempotent per
// booking: if a row already exists the stored one is returned unchanged and
// nothing is written.
func (db *DB) CreateReceipt(ctx context.Context, receipt *models.Receipt) (*models.Receipt, error) {
	existing, err := db.GetReceiptByBookingID(ctx, receipt.BookingID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	query := `INSERT INTO receipts (booking_id, receipt_number, payment_id, guest_name, room_name,
	              check_in, check_out, nights, price_per_night, base_price, extra_guest_charge,
	              breakfast_charge, cgst, sgst, discount, total, qr_payload, paid, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		receipt.BookingID, receipt.ReceiptNumber, nullString(receipt.PaymentID),
		receipt.GuestName, receipt.RoomName, dateKey(receipt.CheckIn), dateKey(receipt.CheckOut),
		receipt.Nights, receipt.PricePerNight, receipt.BasePrice, receipt.ExtraGuestCharge,
		receipt.BreakfastCharge, receipt.CGST, receipt.SGST, receipt.Discount, receipt.Total,
		receipt.QRPayload, receipt.Paid, now,
	)
	if err != nil {
		// A racing insert for the same booking loses on the unique index;
		// fall back to reading the winner's row.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return db.GetReceiptByBookingID(ctx, receipt.BookingID)
		}
		return nil, fmt.Errorf("failed to create receipt: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	receipt.ID = id
	receipt.CreatedAt = now
	return receipt, nil
}

func (db *DB) GetReceiptByBookingID(ctx context.Context, bookingID string) (*models.Receipt, error) {
	query := `SELECT id, booking_id, receipt_number, payment_id, guest_name, room_name,
	                 check_in, check_out, nights, price_per_night, base_price, extra_guest_charge,
	                 breakfast_charge, cgst, sgst, discount, total, qr_payload, paid, created_at
	          FROM receipts WHERE booking_id = ?`
	receipt := &models.Receipt{}
	var checkIn, checkOut string
	var paymentID, qrPayload sql.NullString
	err := db.QueryRowContext(ctx, query, bookingID).Scan(
		&receipt.ID, &receipt.BookingID, &receipt.ReceiptNumber, &paymentID,
		&receipt.GuestName, &receipt.RoomName, &checkIn, &checkOut,
		&receipt.Nights, &receipt.PricePerNight, &receipt.BasePrice, &receipt.ExtraGuestCharge,
		&receipt.BreakfastCharge, &receipt.CGST, &receipt.SGST, &receipt.Discount,
		&receipt.Total, &qrPayload, &receipt.Paid, &receipt.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	receipt.PaymentID = paymentID.String
	receipt.QRPayload = qrPayload.String
	if receipt.CheckIn, err = time.Parse(models.DateLayout, checkIn); err != nil {
		return nil, fmt.Errorf("failed to parse receipt check-in: %w", err)
	}
	if receipt.CheckOut, err = time.Parse(models.DateLayout, checkOut); err != nil {
		return nil, fmt.Errorf("failed to parse receipt check-out: %w", err)
	}
	return receipt, nil
}
