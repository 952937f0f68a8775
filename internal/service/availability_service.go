package service

import (
	"context"
	"time"

	"royalpalace/internal/domain"
	"royalpalace/internal/models"
	"royalpalace/internal/pricing"

	"github.com/rs/zerolog"
)

// AvailabilityService answers calendar questions and applies admin calendar
// edits. All ranges use an exclusive end date: a stay [in, out) occupies the
// nights in..out-1 and the checkout date stays open.
type AvailabilityService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewAvailabilityService(repo domain.Repository, logger *zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{repo: repo, logger: logger}
}

// Rooms returns the catalogue in display order.
func (s *AvailabilityService) Rooms() []*models.Room {
	return s.repo.GetRooms()
}

// QuoteStay prices a prospective stay without touching the calendar.
func (s *AvailabilityService) QuoteStay(ctx context.Context, roomID int64, checkIn, checkOut time.Time, adults, children int, withBreakfast bool) (*pricing.Quote, error) {
	if !checkIn.Before(checkOut) {
		return nil, newValidationError("check_out", "check-out must be after check-in")
	}
	room, err := s.repo.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	quote := pricing.QuoteStay(room, checkIn, checkOut, adults, adults+children, withBreakfast)
	return &quote, nil
}

func (s *AvailabilityService) IsRoomAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	if !checkIn.Before(checkOut) {
		return false, newValidationError("check_out", "check-out must be after check-in")
	}
	return s.repo.IsRoomAvailable(ctx, roomID, checkIn, checkOut)
}

// GetAvailableRooms returns catalogue rooms bookable for the whole range.
func (s *AvailabilityService) GetAvailableRooms(ctx context.Context, checkIn, checkOut time.Time) ([]*models.Room, error) {
	if !checkIn.Before(checkOut) {
		return nil, newValidationError("check_out", "check-out must be after check-in")
	}

	var available []*models.Room
	for _, room := range s.repo.GetRooms() {
		free, err := s.repo.IsRoomAvailable(ctx, room.ID, checkIn, checkOut)
		if err != nil {
			return nil, err
		}
		if free {
			available = append(available, room)
		}
	}
	return available, nil
}

// ResolveDisplayStatus collapses a date range to the single most restrictive
// guest-facing label. Dates without rows count as available.
func (s *AvailabilityService) ResolveDisplayStatus(ctx context.Context, roomID int64, from, to time.Time) (string, error) {
	statuses, err := s.repo.GetDayStatuses(ctx, roomID, from, to)
	if err != nil {
		return "", err
	}

	raw := make([]string, 0, len(statuses))
	for _, status := range statuses {
		raw = append(raw, status)
	}
	return models.DisplayLabel(models.MostRestrictive(raw)), nil
}

// GetRoomCalendar returns a date->label map for every date in [from, to),
// filling absent rows with the available label.
func (s *AvailabilityService) GetRoomCalendar(ctx context.Context, roomID int64, from, to time.Time) (map[string]string, error) {
	statuses, err := s.repo.GetDayStatuses(ctx, roomID, from, to)
	if err != nil {
		return nil, err
	}

	calendar := make(map[string]string)
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(models.DateLayout)
		calendar[key] = models.DisplayLabel(statuses[key])
	}
	return calendar, nil
}

// BulkUpdateAvailability upserts one row per (room, date) across the range.
// The loop is not atomic across rooms: a failure leaves earlier rooms
// updated, and the caller retries.
func (s *AvailabilityService) BulkUpdateAvailability(ctx context.Context, roomIDs []int64, start, end time.Time, status, source, notes string) error {
	if models.StatusPriority(status) > models.StatusPriority(models.DayAvailable) {
		return newValidationError("status", "unknown availability status")
	}
	if !start.Before(end) {
		return newValidationError("end", "end must be after start")
	}

	for _, roomID := range roomIDs {
		if _, err := s.repo.GetRoomByID(ctx, roomID); err != nil {
			return err
		}

		for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
			day := &models.AvailabilityDay{
				RoomID: roomID,
				Date:   d,
				Status: status,
				Source: source,
				Notes:  notes,
			}
			if err := s.repo.UpsertAvailabilityDay(ctx, day); err != nil {
				return err
			}
		}

		if err := s.recomputeRoomAggregate(ctx, roomID, status); err != nil {
			return err
		}

		s.logger.Info().
			Int64("room_id", roomID).
			Str("status", status).
			Str("from", start.Format(models.DateLayout)).
			Str("to", end.Format(models.DateLayout)).
			Msg("availability updated")
	}
	return nil
}

// recomputeRoomAggregate keeps the room-level status in step with the
// calendar. Setting a date back to available only clears the room flag when
// no other restricted day remains.
func (s *AvailabilityService) recomputeRoomAggregate(ctx context.Context, roomID int64, appliedStatus string) error {
	switch appliedStatus {
	case models.DayMaintenance:
		return s.repo.UpdateRoomAggregate(ctx, roomID, models.RoomMaintenance, false)
	case models.DayUnavailable:
		return s.repo.UpdateRoomAggregate(ctx, roomID, models.RoomUnavailable, false)
	case models.DayAvailable:
		restricted, err := s.repo.HasRestrictedDays(ctx, roomID, today())
		if err != nil {
			return err
		}
		if !restricted {
			return s.repo.UpdateRoomAggregate(ctx, roomID, models.RoomAvailable, true)
		}
	}
	return nil
}

func (s *AvailabilityService) InitializeRoomAvailability(ctx context.Context, roomID int64, days int) error {
	if days <= 0 {
		days = models.DefaultInitializeDays
	}
	return s.repo.InitializeRoomAvailability(ctx, roomID, today(), days)
}

func today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
