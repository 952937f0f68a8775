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

func (db *DB) CreatePromoCode(ctx context.Context, promo *models.PromoCode) error {
	query := `INSERT INTO promo_codes (code, discount_amount, expiry_date, max_uses, current_uses, status, created_at, updated_at)
	          VALUES (?, ?, ?, ?, 0, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		promo.Code, promo.DiscountAmount, dateKey(promo.ExpiryDate), promo.MaxUses, promo.Status, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateCode
		}
		return fmt.Errorf("failed to create promo code: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	promo.ID = id
	promo.CreatedAt = now
	promo.UpdatedAt = now
	return nil
}

func (db *DB) GetPromoCode(ctx context.Context, code string) (*models.PromoCode, error) {
	query := `SELECT id, code, discount_amount, expiry_date, max_uses, current_uses, status, created_at, updated_at
	          FROM promo_codes WHERE code = ?`
	promo := &models.PromoCode{}
	var expiry string
	err := db.QueryRowContext(ctx, query, code).Scan(
		&promo.ID, &promo.Code, &promo.DiscountAmount, &expiry,
		&promo.MaxUses, &promo.CurrentUses, &promo.Status, &promo.CreatedAt, &promo.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	if promo.ExpiryDate, err = time.Parse(models.DateLayout, expiry); err != nil {
		return nil, fmt.Errorf("failed to parse promo expiry: %w", err)
	}
	return promo, nil
}

func (db *DB) ListPromoCodes(ctx context.Context) ([]*models.PromoCode, error) {
	query := `SELECT id, code, discount_amount, expiry_date, max_uses, current_uses, status, created_at, updated_at
	          FROM promo_codes ORDER BY created_at DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list promo codes: %w", err)
	}
	defer rows.Close()

	var promos []*models.PromoCode
	for rows.Next() {
		promo := &models.PromoCode{}
		var expiry string
		err := rows.Scan(
			&promo.ID, &promo.Code, &promo.DiscountAmount, &expiry,
			&promo.MaxUses, &promo.CurrentUses, &promo.Status, &promo.CreatedAt, &promo.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promo code: %w", err)
		}
		if promo.ExpiryDate, err = time.Parse(models.DateLayout, expiry); err != nil {
			return nil, fmt.Errorf("failed to parse promo expiry: %w", err)
		}
		promos = append(promos, promo)
	}
	return promos, rows.Err()
}

// RedeemPromoCode consumes one use of a code. The guard on current_uses is
// part of the UPDATE itself so two concurrent redemptions of the last use
// cannot both succeed.
func (db *DB) RedeemPromoCode(ctx context.Context, code string) error {
	query := `UPDATE promo_codes
	          SET current_uses = current_uses + 1, updated_at = ?
	          WHERE code = ? AND status = ? AND current_uses < max_uses AND expiry_date >= ?`
	result, err := db.ExecContext(ctx, query, time.Now(), code, models.PromoActive, dateKey(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to redeem promo code: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		if _, getErr := db.GetPromoCode(ctx, code); errors.Is(getErr, ErrNotFound) {
			return ErrNotFound
		}
		return ErrPromoExhausted
	}
	return nil
}

func (db *DB) DeletePromoCode(ctx context.Context, code string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM promo_codes WHERE code = ?`, code)
	if err != nil {
		return fmt.Errorf("failed to delete promo code: %w", err)
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
