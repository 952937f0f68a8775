package database

import "errors"

var (
	// ErrNotFound is returned when a room, booking, receipt or promo code
	// does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNotAvailable is returned when a room has a blocking availability
	// day inside the requested stay range.
	ErrNotAvailable = errors.New("room is not available for the requested dates")

	// ErrConcurrentModification is returned when a version-guarded update
	// matched no rows.
	ErrConcurrentModification = errors.New("booking was modified concurrently")

	// ErrPromoExhausted is returned when a conditional redeem found no uses left.
	ErrPromoExhausted = errors.New("promo code has no uses left")

	// ErrDuplicateCode is returned when inserting a promo code that already exists.
	ErrDuplicateCode = errors.New("promo code already exists")
)
