package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"royalpalace/internal/models"
)

// SetRooms replaces the in-memory room cache. Called at startup with the
// seeded room list and after any room mutation.
func (db *DB) SetRooms(rooms []*models.Room) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.roomsCache = make(map[int64]*models.Room, len(rooms))
	for _, room := range rooms {
		db.roomsCache[room.ID] = room
	}
	sorted := append([]*models.Room(nil), rooms...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].SortOrder == sorted[j].SortOrder {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].SortOrder < sorted[j].SortOrder
	})
	db.sortedRooms = sorted
}

// GetRooms returns the cached rooms in display order.
func (db *DB) GetRooms() []*models.Room {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return append([]*models.Room(nil), db.sortedRooms...)
}

func (db *DB) roomFromCache(id int64) (*models.Room, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	room, ok := db.roomsCache[id]
	return room, ok
}

func (db *DB) GetRoomByID(ctx context.Context, id int64) (*models.Room, error) {
	if room, ok := db.roomFromCache(id); ok {
		return room, nil
	}

	var room models.Room
	query := `SELECT id, name, description, price, capacity, beds, baths, category,
	                 breakfast_price, is_available, status, sort_order, created_at, updated_at
	          FROM rooms WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&room.ID, &room.Name, &room.Description, &room.Price, &room.Capacity,
		&room.Beds, &room.Baths, &room.Category, &room.BreakfastPrice,
		&room.IsAvailable, &room.Status, &room.SortOrder, &room.CreatedAt, &room.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &room, nil
}

func (db *DB) CreateRoom(ctx context.Context, room *models.Room) error {
	query := `INSERT INTO rooms (name, description, price, capacity, beds, baths, category,
	                             breakfast_price, is_available, status, sort_order, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		room.Name, room.Description, room.Price, room.Capacity, room.Beds, room.Baths,
		room.Category, room.BreakfastPrice, room.IsAvailable, room.Status, room.SortOrder,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	room.ID = id
	room.CreatedAt = now
	room.UpdatedAt = now

	db.mu.Lock()
	db.roomsCache[id] = room
	db.sortedRooms = append(db.sortedRooms, room)
	db.mu.Unlock()

	return nil
}

func (db *DB) ListRooms(ctx context.Context) ([]*models.Room, error) {
	query := `SELECT id, name, description, price, capacity, beds, baths, category,
	                 breakfast_price, is_available, status, sort_order, created_at, updated_at
	          FROM rooms ORDER BY sort_order, id`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		room := &models.Room{}
		err := rows.Scan(
			&room.ID, &room.Name, &room.Description, &room.Price, &room.Capacity,
			&room.Beds, &room.Baths, &room.Category, &room.BreakfastPrice,
			&room.IsAvailable, &room.Status, &room.SortOrder, &room.CreatedAt, &room.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// UpdateRoomAggregate persists the room-level status fields that summarize
// the availability calendar, and refreshes the cache entry.
func (db *DB) UpdateRoomAggregate(ctx context.Context, roomID int64, status string, isAvailable bool) error {
	query := `UPDATE rooms SET status = ?, is_available = ?, updated_at = ? WHERE id = ?`
	if _, err := db.ExecContext(ctx, query, status, isAvailable, time.Now(), roomID); err != nil {
		return fmt.Errorf("failed to update room aggregate: %w", err)
	}

	db.mu.Lock()
	if room, ok := db.roomsCache[roomID]; ok {
		room.Status = status
		room.IsAvailable = isAvailable
	}
	db.mu.Unlock()

	return nil
}
