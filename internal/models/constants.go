package models

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"
	StatusCancelled  = "cancelled"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

const (
	BookingTypeOnline  = "online"
	BookingTypeOffline = "offline"
)

const (
	DayAvailable      = "available"
	DayOnlineBooking  = "online-booking"
	DayOfflineBooking = "offline-booking"
	DayMaintenance    = "maintenance"
	DayUnavailable    = "unavailable"
)

const (
	SourceAdmin   = "admin"
	SourceSystem  = "system"
	SourceBooking = "booking"
)

const (
	RoomAvailable   = "available"
	RoomBooked      = "booked"
	RoomMaintenance = "maintenance"
	RoomUnavailable = "unavailable"
)

const (
	CategoryRoyalDeluxe    = "Royal Deluxe"
	CategoryRoyalExecutive = "Royal Executive"
	CategoryRoyalSuite     = "Royal Suite"
)

const (
	PromoActive  = "active"
	PromoExpired = "expired"
	PromoUsed    = "used"
)

const (
	TableBookingPending   = "pending"
	TableBookingConfirmed = "confirmed"
	TableBookingCancelled = "cancelled"
)

const (
	SyncTaskBookingUpsert = "booking_upsert"
	SyncTaskBookingDelete = "booking_delete"
)

const (
	SyncStatusPending = "pending"
	SyncStatusDone    = "done"
	SyncStatusFailed  = "failed"
)

// DateLayout is the calendar-date wire format used everywhere in the API and store.
const DateLayout = "2006-01-02"

const (
	// ExtraGuestRate is the per-night surcharge for each guest above base capacity.
	ExtraGuestRate = 600.0

	// TaxRate is the CGST and SGST rate (6.1% each). Tax is computed for
	// records but never added to the guest-facing total.
	TaxRate = 0.061
)

const (
	// DefaultSessionTTL is the admin session lifetime in Redis, in seconds.
	DefaultSessionTTL = 24 * 60 * 60

	// WorkerQueueSize is the sync worker queue capacity.
	WorkerQueueSize = 1000

	// RateLimitRequests is the number of requests allowed per window.
	RateLimitRequests = 20

	// RateLimitWindow is the rate limit window in seconds.
	RateLimitWindow = 60

	// DefaultInitializeDays is how far ahead the availability calendar is seeded.
	DefaultInitializeDays = 365
)
