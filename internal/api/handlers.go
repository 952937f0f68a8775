package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"royalpalace/internal/database"
	"royalpalace/internal/models"
	"royalpalace/internal/service"
)

func parseDate(raw string) (time.Time, error) {
	return time.Parse(models.DateLayout, strings.TrimSpace(raw))
}

func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	date, err := parseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s; expected YYYY-MM-DD", name)
	}
	return date, nil
}

// writeServiceError maps service and store errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, database.ErrNotAvailable):
		writeError(w, http.StatusConflict, "room is not available for the requested dates")
	case errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, "booking was modified concurrently, retry")
	case errors.Is(err, database.ErrDuplicateCode):
		writeError(w, http.StatusConflict, "promo code already exists")
	case errors.Is(err, database.ErrPromoExhausted):
		writeError(w, http.StatusConflict, "promo code has no uses left")
	case errors.Is(err, service.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid booking status transition")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"rooms": s.availability.Rooms()})
}

func (s *Server) handleAvailableRooms(w http.ResponseWriter, r *http.Request) {
	checkIn, err := parseDateParam(r, "check_in")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	checkOut, err := parseDateParam(r, "check_out")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rooms, err := s.availability.GetAvailableRooms(r.Context(), checkIn, checkOut)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

func (s *Server) handleRoomCalendar(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(r.PathValue("roomID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	from, err := parseDateParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	calendar, err := s.availability.GetRoomCalendar(r.Context(), roomID, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status, err := s.availability.ResolveDisplayStatus(r.Context(), roomID, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"room_id":  roomID,
		"status":   status,
		"calendar": calendar,
	})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(r.URL.Query().Get("room_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room_id")
		return
	}
	checkIn, err := parseDateParam(r, "check_in")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	checkOut, err := parseDateParam(r, "check_out")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	adults, _ := strconv.Atoi(r.URL.Query().Get("adults"))
	if adults < 1 {
		adults = 1
	}
	children, _ := strconv.Atoi(r.URL.Query().Get("children"))
	breakfast := r.URL.Query().Get("breakfast") == "true"

	quote, err := s.availability.QuoteStay(r.Context(), roomID, checkIn, checkOut, adults, children, breakfast)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

type bookingPayload struct {
	RoomID        int64  `json:"room_id"`
	GuestName     string `json:"guest_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children"`
	WithBreakfast bool   `json:"with_breakfast"`
	RoomCount     int    `json:"room_count"`
	BookingType   string `json:"booking_type"`
	PromoCode     string `json:"promo_code"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var payload bookingPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	checkIn, err := parseDate(payload.CheckIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid check_in; expected YYYY-MM-DD")
		return
	}
	checkOut, err := parseDate(payload.CheckOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid check_out; expected YYYY-MM-DD")
		return
	}

	booking, err := s.bookings.CreateHotelBooking(r.Context(), &service.HotelBookingRequest{
		RoomID:        payload.RoomID,
		GuestName:     payload.GuestName,
		Email:         payload.Email,
		Phone:         payload.Phone,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Adults:        payload.Adults,
		Children:      payload.Children,
		WithBreakfast: payload.WithBreakfast,
		RoomCount:     payload.RoomCount,
		BookingType:   payload.BookingType,
		PromoCode:     payload.PromoCode,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := s.bookings.GetBooking(r.Context(), r.PathValue("bookingID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.receipts.GenerateReceipt(r.Context(), r.PathValue("bookingID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(s.receipts.RenderText(receipt)))
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

type tableBookingPayload struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
	Guests   int    `json:"guests"`
}

func (s *Server) handleCreateTableBooking(w http.ResponseWriter, r *http.Request) {
	var payload tableBookingPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	date, err := parseDate(payload.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
		return
	}

	booking, err := s.bookings.CreateTableBooking(r.Context(), &service.TableBookingRequest{
		Name:     payload.Name,
		Phone:    payload.Phone,
		Email:    payload.Email,
		Date:     date,
		TimeSlot: payload.TimeSlot,
		Guests:   payload.Guests,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleValidatePromo(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Code   string  `json:"code"`
		Amount float64 `json:"amount"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	result, err := s.promos.Validate(r.Context(), payload.Code, payload.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if allowed, err := s.sessionStore.CheckRateLimit(r.Context(), "login:"+clientIP(r),
		models.RateLimitRequests, time.Duration(models.RateLimitWindow)*time.Second); err == nil && !allowed {
		writeError(w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	session, err := s.sessions.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.Header.Get(sessionHeader))
	if err := s.sessions.Logout(r.Context(), token); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (s *Server) handleAdminListBookings(w http.ResponseWriter, r *http.Request) {
	// With from/to the listing narrows to stays overlapping the range.
	if r.URL.Query().Get("from") != "" || r.URL.Query().Get("to") != "" {
		from, err := parseDateParam(r, "from")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		to, err := parseDateParam(r, "to")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		bookings, err := s.bookings.BookingsInRange(r.Context(), from, to)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
		return
	}

	var statuses []string
	if raw := r.URL.Query().Get("status"); raw != "" {
		statuses = strings.Split(raw, ",")
	}

	bookings, err := s.bookings.ListBookings(r.Context(), statuses...)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *Server) handleBookingStatus(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	booking, err := s.bookings.TransitionBooking(r.Context(), r.PathValue("bookingID"), payload.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	booking, err := s.bookings.CheckoutRoom(r.Context(), r.PathValue("bookingID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleBookingPayment(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PaymentStatus string `json:"payment_status"`
		PaymentID     string `json:"payment_id"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	booking, err := s.bookings.MarkPayment(r.Context(), r.PathValue("bookingID"), payload.PaymentStatus, payload.PaymentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleAdminListTableBookings(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := s.bookings.ListTableBookings(r.Context(), date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"table_bookings": bookings})
}

func (s *Server) handleTableBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid table booking id")
		return
	}
	var payload struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	booking, err := s.bookings.UpdateTableBookingStatus(r.Context(), id, payload.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := s.bookings.DeleteBooking(r.Context(), r.PathValue("bookingID")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type availabilityBulkPayload struct {
	RoomIDs []int64 `json:"room_ids"`
	Start   string  `json:"start"`
	End     string  `json:"end"`
	Status  string  `json:"status"`
	Notes   string  `json:"notes"`
}

func (s *Server) handleAvailabilityBulk(w http.ResponseWriter, r *http.Request) {
	var payload availabilityBulkPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if len(payload.RoomIDs) == 0 {
		writeError(w, http.StatusBadRequest, "room_ids is required")
		return
	}

	start, err := parseDate(payload.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start; expected YYYY-MM-DD")
		return
	}
	end, err := parseDate(payload.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end; expected YYYY-MM-DD")
		return
	}

	err = s.availability.BulkUpdateAvailability(r.Context(), payload.RoomIDs, start, end,
		payload.Status, models.SourceAdmin, payload.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleListPromos(w http.ResponseWriter, r *http.Request) {
	promos, err := s.promos.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"promo_codes": promos})
}

func (s *Server) handleCreatePromo(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Code           string  `json:"code"`
		DiscountAmount float64 `json:"discount_amount"`
		ExpiryDate     string  `json:"expiry_date"`
		MaxUses        int     `json:"max_uses"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	expiry, err := parseDate(payload.ExpiryDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expiry_date; expected YYYY-MM-DD")
		return
	}

	promo, err := s.promos.Create(r.Context(), payload.Code, payload.DiscountAmount, expiry, payload.MaxUses)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, promo)
}

func (s *Server) handleDeletePromo(w http.ResponseWriter, r *http.Request) {
	if err := s.promos.Delete(r.Context(), r.PathValue("code")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleOccupancyExport(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	buf, err := s.exporter.OccupancyReport(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("occupancy_%s_%s.xlsx",
		from.Format(models.DateLayout), to.Format(models.DateLayout))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
