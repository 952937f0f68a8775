package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"royalpalace/internal/domain"
	"royalpalace/internal/events"
	"royalpalace/internal/metrics"
	"royalpalace/internal/models"
	"royalpalace/internal/pricing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HotelBookingRequest carries guest input for a room booking.
type HotelBookingRequest struct {
	RoomID        int64     `json:"room_id"`
	GuestName     string    `json:"guest_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	Adults        int       `json:"adults"`
	Children      int       `json:"children"`
	WithBreakfast bool      `json:"with_breakfast"`
	RoomCount     int       `json:"room_count"`
	BookingType   string    `json:"booking_type"`
	PromoCode     string    `json:"promo_code"`
}

// TableBookingRequest carries guest input for a restaurant table.
type TableBookingRequest struct {
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	Email    string    `json:"email"`
	Date     time.Time `json:"date"`
	TimeSlot string    `json:"time_slot"`
	Guests   int       `json:"guests"`
}

// BookingService owns the booking lifecycle: creation, status transitions,
// checkout and deletion, with the calendar kept in step.
type BookingService struct {
	repo   domain.Repository
	promos *PromoService
	bus    *events.Bus
	logger *zerolog.Logger
}

func NewBookingService(repo domain.Repository, promos *PromoService, bus *events.Bus, logger *zerolog.Logger) *BookingService {
	return &BookingService{repo: repo, promos: promos, bus: bus, logger: logger}
}

func (s *BookingService) validateHotelRequest(req *HotelBookingRequest) error {
	if strings.TrimSpace(req.GuestName) == "" {
		return newValidationError("guest_name", "guest name is required")
	}
	if !strings.Contains(req.Email, "@") {
		return newValidationError("email", "a valid email is required")
	}
	if len(strings.TrimSpace(req.Phone)) < 7 {
		return newValidationError("phone", "a valid phone number is required")
	}
	if req.Adults < 1 {
		return newValidationError("adults", "at least one adult is required")
	}
	if req.Children < 0 {
		return newValidationError("children", "children cannot be negative")
	}
	if !req.CheckIn.Before(req.CheckOut) {
		return newValidationError("check_out", "check-out must be after check-in")
	}
	if req.CheckIn.Before(today()) {
		return newValidationError("check_in", "check-in date is in the past")
	}
	if req.RoomCount < 1 {
		req.RoomCount = 1
	}
	if req.BookingType == "" {
		req.BookingType = models.BookingTypeOnline
	}
	if req.BookingType != models.BookingTypeOnline && req.BookingType != models.BookingTypeOffline {
		return newValidationError("booking_type", "unknown booking type")
	}
	return nil
}

// CreateHotelBooking prices and persists a pending booking, claiming its
// stay dates. Availability is rechecked inside the insert transaction, so a
// calendar read that went stale between quote and submit is caught here.
// Two writers racing the same dates can still slip past each other between
// the in-transaction check and the day upserts; the admin surface shows the
// collision and staff resolve it manually.
func (s *BookingService) CreateHotelBooking(ctx context.Context, req *HotelBookingRequest) (*models.Booking, error) {
	if err := s.validateHotelRequest(req); err != nil {
		metrics.BookingsFailed.WithLabelValues("validation").Inc()
		return nil, err
	}

	room, err := s.repo.GetRoomByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	guests := req.Adults + req.Children
	quote := pricing.QuoteStay(room, req.CheckIn, req.CheckOut, req.Adults, guests, req.WithBreakfast)
	total := pricing.RoundMoney(quote.Total + quote.BreakfastCharge)

	if req.PromoCode != "" {
		validation, err := s.promos.Validate(ctx, req.PromoCode, total)
		if err != nil {
			return nil, err
		}
		if !validation.Valid {
			metrics.BookingsFailed.WithLabelValues("promo").Inc()
			return nil, newValidationError("promo_code", validation.Message)
		}
		total = validation.FinalAmount
	}

	booking := &models.Booking{
		ID:            uuid.NewString(),
		RoomID:        room.ID,
		RoomName:      room.Name,
		GuestName:     strings.TrimSpace(req.GuestName),
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		CheckIn:       req.CheckIn,
		CheckOut:      req.CheckOut,
		Guests:        guests,
		Adults:        req.Adults,
		Children:      req.Children,
		TotalPrice:    total,
		Status:        models.StatusPending,
		PaymentStatus: models.PaymentPending,
		BookingType:   req.BookingType,
		WithBreakfast: req.WithBreakfast,
		ExtraGuests:   quote.ExtraGuests,
		RoomCount:     req.RoomCount,
		PromoCode:     req.PromoCode,
	}

	if err := s.repo.CreateBookingWithLock(ctx, booking); err != nil {
		metrics.BookingsFailed.WithLabelValues("availability").Inc()
		return nil, err
	}

	// The code is consumed only now that the discounted booking exists.
	if req.PromoCode != "" {
		if err := s.promos.Redeem(ctx, req.PromoCode); err != nil {
			s.logger.Warn().Err(err).
				Str("booking_id", booking.ID).
				Str("code", req.PromoCode).
				Msg("promo redemption failed after booking creation")
		}
	}

	metrics.BookingsCreated.WithLabelValues(booking.BookingType).Inc()
	s.logger.Info().
		Str("booking_id", booking.ID).
		Int64("room_id", booking.RoomID).
		Str("guest", booking.GuestName).
		Float64("total", booking.TotalPrice).
		Msg("hotel booking created")

	s.enqueueSync(ctx, models.SyncTaskBookingUpsert, booking)
	s.bus.Publish(ctx, events.Event{
		Type:      events.TypeBookingCreated,
		BookingID: booking.ID,
		RoomID:    booking.RoomID,
	})
	return booking, nil
}

func (s *BookingService) CreateTableBooking(ctx context.Context, req *TableBookingRequest) (*models.TableBooking, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, newValidationError("name", "name is required")
	}
	if len(strings.TrimSpace(req.Phone)) < 7 {
		return nil, newValidationError("phone", "a valid phone number is required")
	}
	if req.Date.Before(today()) {
		return nil, newValidationError("date", "date is in the past")
	}
	if req.TimeSlot == "" {
		return nil, newValidationError("time_slot", "time slot is required")
	}
	if req.Guests < 1 {
		return nil, newValidationError("guests", "at least one guest is required")
	}

	booking := &models.TableBooking{
		Name:     strings.TrimSpace(req.Name),
		Phone:    strings.TrimSpace(req.Phone),
		Email:    strings.TrimSpace(req.Email),
		Date:     req.Date,
		TimeSlot: req.TimeSlot,
		Guests:   req.Guests,
		Status:   models.TableBookingPending,
	}
	if err := s.repo.CreateTableBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("table_booking_id", booking.ID).
		Str("date", booking.Date.Format(models.DateLayout)).
		Str("slot", booking.TimeSlot).
		Msg("table booking created")

	s.bus.Publish(ctx, events.Event{Type: events.TypeTableBooked})
	return booking, nil
}

// ListTableBookings returns the restaurant reservations for one date.
func (s *BookingService) ListTableBookings(ctx context.Context, date time.Time) ([]*models.TableBooking, error) {
	return s.repo.ListTableBookingsByDate(ctx, date)
}

func (s *BookingService) UpdateTableBookingStatus(ctx context.Context, id int64, status string) (*models.TableBooking, error) {
	switch status {
	case models.TableBookingPending, models.TableBookingConfirmed, models.TableBookingCancelled:
	default:
		return nil, newValidationError("status", "unknown table booking status")
	}
	if err := s.repo.UpdateTableBookingStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("table_booking_id", id).Str("status", status).Msg("table booking status changed")
	return s.repo.GetTableBooking(ctx, id)
}

// MarkPayment records a payment state change reported by staff. Payment is
// bookkeeping only; no gateway is involved.
func (s *BookingService) MarkPayment(ctx context.Context, id, paymentStatus, paymentID string) (*models.Booking, error) {
	switch paymentStatus {
	case models.PaymentPending, models.PaymentPaid, models.PaymentFailed, models.PaymentRefunded:
	default:
		return nil, newValidationError("payment_status", "unknown payment status")
	}

	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBookingPayment(ctx, id, paymentStatus, paymentID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("booking_id", id).
		Str("payment_status", paymentStatus).
		Msg("booking payment updated")

	s.enqueueSync(ctx, models.SyncTaskBookingUpsert, booking)
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) ListBookings(ctx context.Context, statuses ...string) ([]*models.Booking, error) {
	return s.repo.ListBookings(ctx, statuses...)
}

// BookingsInRange returns active bookings whose stay overlaps [from, to).
func (s *BookingService) BookingsInRange(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	if !from.Before(to) {
		return nil, newValidationError("to", "to must be after from")
	}
	return s.repo.GetBookingsByDateRange(ctx, from, to)
}

// TransitionBooking moves a booking through its lifecycle. Cancellation
// releases the claimed dates.
func (s *BookingService) TransitionBooking(ctx context.Context, id, newStatus string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.CanTransition(newStatus) {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateBookingStatusWithVersion(ctx, id, newStatus, booking.Version); err != nil {
		return nil, err
	}

	if newStatus == models.StatusCancelled {
		if err := s.releaseAndRecompute(ctx, id, nil); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("booking_id", id).
		Str("from", booking.Status).
		Str("to", newStatus).
		Msg("booking status changed")

	s.enqueueSync(ctx, models.SyncTaskBookingUpsert, booking)
	s.bus.Publish(ctx, events.Event{
		Type:      eventTypeForStatus(newStatus),
		BookingID: id,
		RoomID:    booking.RoomID,
	})
	return s.repo.GetBooking(ctx, id)
}

// CheckoutRoom finishes a stay. Remaining nights from today onward go back
// to the pool unless another active booking claims them, and the room
// aggregate is recomputed.
func (s *BookingService) CheckoutRoom(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.CanTransition(models.StatusCheckedOut) {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateBookingStatusWithVersion(ctx, bookingID, models.StatusCheckedOut, booking.Version); err != nil {
		return nil, err
	}

	from := today()
	if err := s.releaseAndRecompute(ctx, bookingID, &from); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("booking_id", bookingID).
		Int64("room_id", booking.RoomID).
		Msg("room checked out")

	s.enqueueSync(ctx, models.SyncTaskBookingUpsert, booking)
	s.bus.Publish(ctx, events.Event{
		Type:      events.TypeBookingCheckedOut,
		BookingID: bookingID,
		RoomID:    booking.RoomID,
	})
	return s.repo.GetBooking(ctx, bookingID)
}

// DeleteBooking removes a booking entirely and frees its dates. Meant for
// the admin surface; guests cancel instead.
func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}

	if err := s.releaseAndRecompute(ctx, id, nil); err != nil {
		return err
	}
	if err := s.repo.DeleteBooking(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("booking_id", id).Msg("booking deleted")

	s.enqueueSync(ctx, models.SyncTaskBookingDelete, booking)
	s.bus.Publish(ctx, events.Event{
		Type:      events.TypeBookingCancelled,
		BookingID: id,
		RoomID:    booking.RoomID,
	})
	return nil
}

func (s *BookingService) releaseAndRecompute(ctx context.Context, bookingID string, from *time.Time) error {
	rooms, err := s.repo.ReleaseBookingDays(ctx, bookingID, from)
	if err != nil {
		return err
	}
	for _, roomID := range rooms {
		restricted, err := s.repo.HasRestrictedDays(ctx, roomID, today())
		if err != nil {
			return err
		}
		if !restricted {
			if err := s.repo.UpdateRoomAggregate(ctx, roomID, models.RoomAvailable, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *BookingService) enqueueSync(ctx context.Context, taskType string, booking *models.Booking) {
	payload, err := json.Marshal(booking)
	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to marshal sync payload")
		return
	}
	if _, err := s.repo.EnqueueSyncTask(ctx, taskType, booking.ID, string(payload)); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to enqueue sync task")
	}
}

func eventTypeForStatus(status string) string {
	switch status {
	case models.StatusConfirmed:
		return events.TypeBookingConfirmed
	case models.StatusCheckedIn:
		return events.TypeBookingCheckedIn
	case models.StatusCheckedOut:
		return events.TypeBookingCheckedOut
	default:
		return events.TypeBookingCancelled
	}
}
