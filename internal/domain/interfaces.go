package domain

import (
	"context"
	"time"

	"royalpalace/internal/models"
)

// RoomStore covers the room catalogue and the aggregate status fields.
type RoomStore interface {
	GetRooms() []*models.Room
	GetRoomByID(ctx context.Context, id int64) (*models.Room, error)
	CreateRoom(ctx context.Context, room *models.Room) error
	UpdateRoomAggregate(ctx context.Context, roomID int64, status string, isAvailable bool) error
}

// AvailabilityStore covers the per-day calendar.
type AvailabilityStore interface {
	UpsertAvailabilityDay(ctx context.Context, day *models.AvailabilityDay) error
	GetDayStatuses(ctx context.Context, roomID int64, from, to time.Time) (map[string]string, error)
	GetAvailabilityDays(ctx context.Context, roomID int64, from, to time.Time) ([]*models.AvailabilityDay, error)
	IsRoomAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error)
	HasRestrictedDays(ctx context.Context, roomID int64, from time.Time) (bool, error)
	InitializeRoomAvailability(ctx context.Context, roomID int64, start time.Time, days int) error
	ReleaseBookingDays(ctx context.Context, bookingID string, from *time.Time) ([]int64, error)
}

// BookingStore covers hotel and restaurant bookings.
type BookingStore interface {
	CreateBookingWithLock(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id, status string, version int64) error
	UpdateBookingPayment(ctx context.Context, id, paymentStatus, paymentID string) error
	DeleteBooking(ctx context.Context, id string) error
	ListBookings(ctx context.Context, statuses ...string) ([]*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, from, to time.Time) ([]*models.Booking, error)

	CreateTableBooking(ctx context.Context, booking *models.TableBooking) error
	GetTableBooking(ctx context.Context, id int64) (*models.TableBooking, error)
	ListTableBookingsByDate(ctx context.Context, date time.Time) ([]*models.TableBooking, error)
	UpdateTableBookingStatus(ctx context.Context, id int64, status string) error
}

// ReceiptStore persists generated receipts.
type ReceiptStore interface {
	CreateReceipt(ctx context.Context, receipt *models.Receipt) (*models.Receipt, error)
	GetReceiptByBookingID(ctx context.Context, bookingID string) (*models.Receipt, error)
}

// PromoStore persists promo codes.
type PromoStore interface {
	CreatePromoCode(ctx context.Context, promo *models.PromoCode) error
	GetPromoCode(ctx context.Context, code string) (*models.PromoCode, error)
	ListPromoCodes(ctx context.Context) ([]*models.PromoCode, error)
	RedeemPromoCode(ctx context.Context, code string) error
	DeletePromoCode(ctx context.Context, code string) error
}

// StaffStore covers staff accounts for the admin surface.
type StaffStore interface {
	GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error)
	TouchStaffLogin(ctx context.Context, id int64) error
}

// SyncQueueStore is the durable backlog for back-office sheet sync.
type SyncQueueStore interface {
	EnqueueSyncTask(ctx context.Context, taskType, bookingID, payload string) (int64, error)
	GetPendingSyncTasks(ctx context.Context, limit int) ([]*models.SyncTask, error)
	MarkSyncTaskDone(ctx context.Context, id int64) error
	MarkSyncTaskRetry(ctx context.Context, id int64, taskErr error, nextRetryAt time.Time, maxRetries int) error
}

// Repository is the full persistence surface the services depend on.
// *database.DB satisfies it.
type Repository interface {
	RoomStore
	AvailabilityStore
	BookingStore
	ReceiptStore
	PromoStore
	StaffStore
	SyncQueueStore
}

// SessionStore keeps admin sessions and rate-limit counters. Backed by
// Redis with an in-memory failover.
type SessionStore interface {
	SaveSession(ctx context.Context, session *models.AdminSession, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (*models.AdminSession, error)
	DeleteSession(ctx context.Context, token string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Ping(ctx context.Context) error
}

// Notifier delivers operational messages to staff.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// SheetsWriter mirrors bookings into the back-office spreadsheet.
type SheetsWriter interface {
	AppendBookingRow(ctx context.Context, booking *models.Booking) error
	RemoveBookingRow(ctx context.Context, bookingID string) error
}
