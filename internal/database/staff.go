package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"royalpalace/internal/models"
)

func (db *DB) CreateStaff(ctx context.Context, staff *models.Staff) error {
	query := `INSERT INTO staff (email, name, phone, role, password_hash, is_active, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		staff.Email, staff.Name, nullString(staff.Phone), staff.Role,
		staff.PasswordHash, staff.IsActive, now, now)
	if err != nil {
		return fmt.Errorf("failed to create staff: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	staff.ID = id
	staff.CreatedAt = now
	staff.UpdatedAt = now
	return nil
}

func (db *DB) GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error) {
	query := `SELECT id, email, name, phone, role, password_hash, is_active, last_login_at, created_at, updated_at
	          FROM staff WHERE email = ?`
	staff := &models.Staff{}
	var phone sql.NullString
	var lastLogin sql.NullTime
	err := db.QueryRowContext(ctx, query, email).Scan(
		&staff.ID, &staff.Email, &staff.Name, &phone, &staff.Role,
		&staff.PasswordHash, &staff.IsActive, &lastLogin, &staff.CreatedAt, &staff.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	staff.Phone = phone.String
	if lastLogin.Valid {
		staff.LastLoginAt = &lastLogin.Time
	}
	return staff, nil
}

func (db *DB) TouchStaffLogin(ctx context.Context, id int64) error {
	now := time.Now()
	_, err := db.ExecContext(ctx,
		`UPDATE staff SET last_login_at = ?, updated_at = ? WHERE id = ?`, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to touch staff login: %w", err)
	}
	return nil
}
