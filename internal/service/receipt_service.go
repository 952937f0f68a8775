package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"royalpalace/internal/domain"
	"royalpalace/internal/events"
	"royalpalace/internal/metrics"
	"royalpalace/internal/models"
	"royalpalace/internal/pricing"

	"github.com/rs/zerolog"
)

// ReceiptService builds and renders payment receipts. A booking gets at most
// one receipt; repeated generation returns the stored one.
type ReceiptService struct {
	repo      domain.Repository
	bus       *events.Bus
	logger    *zerolog.Logger
	verifyURL string
}

func NewReceiptService(repo domain.Repository, bus *events.Bus, logger *zerolog.Logger, verifyURL string) *ReceiptService {
	return &ReceiptService{repo: repo, bus: bus, logger: logger, verifyURL: strings.TrimRight(verifyURL, "/")}
}

// ReceiptNumber derives the stable receipt number for a booking: RP, the
// receipt date, and the first six hex characters of the booking id.
func ReceiptNumber(bookingID string, at time.Time) string {
	hex := strings.ReplaceAll(bookingID, "-", "")
	if len(hex) > 6 {
		hex = hex[:6]
	}
	return fmt.Sprintf("RP-%s-%s", at.Format("20060102"), strings.ToUpper(hex))
}

// GenerateReceipt builds the receipt for a booking. The price breakdown is
// recomputed from the room so historical receipts stay explainable; any gap
// between the recomputed charges and the booking's stored total is shown as
// the discount line.
func (s *ReceiptService) GenerateReceipt(ctx context.Context, bookingID string) (*models.Receipt, error) {
	if existing, err := s.repo.GetReceiptByBookingID(ctx, bookingID); err == nil {
		return existing, nil
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	room, err := s.repo.GetRoomByID(ctx, booking.RoomID)
	if err != nil {
		return nil, err
	}

	quote := pricing.QuoteStay(room, booking.CheckIn, booking.CheckOut, booking.Adults, booking.Guests, booking.WithBreakfast)
	charged := pricing.RoundMoney(quote.Total + quote.BreakfastCharge)
	discount := pricing.RoundMoney(charged - booking.TotalPrice)
	if discount < 0 {
		discount = 0
	}

	now := time.Now()
	number := ReceiptNumber(booking.ID, now)
	receipt := &models.Receipt{
		BookingID:        booking.ID,
		ReceiptNumber:    number,
		PaymentID:        booking.PaymentID,
		GuestName:        booking.GuestName,
		RoomName:         booking.RoomName,
		CheckIn:          booking.CheckIn,
		CheckOut:         booking.CheckOut,
		Nights:           quote.Nights,
		PricePerNight:    quote.PricePerNight,
		BasePrice:        quote.BasePrice,
		ExtraGuestCharge: quote.ExtraGuestCharge,
		BreakfastCharge:  quote.BreakfastCharge,
		CGST:             quote.CGST,
		SGST:             quote.SGST,
		Discount:         discount,
		Total:            booking.TotalPrice,
		QRPayload:        fmt.Sprintf("%s/receipts/%s", s.verifyURL, number),
		Paid:             booking.PaymentStatus == models.PaymentPaid,
	}

	stored, err := s.repo.CreateReceipt(ctx, receipt)
	if err != nil {
		return nil, err
	}
	if stored.ReceiptNumber == number {
		metrics.ReceiptsGenerated.Inc()
		s.logger.Info().
			Str("booking_id", bookingID).
			Str("receipt_number", number).
			Msg("receipt generated")
		s.bus.Publish(ctx, events.Event{
			Type:      events.TypeReceiptGenerated,
			BookingID: bookingID,
			RoomID:    booking.RoomID,
		})
	}
	return stored, nil
}

// RenderText produces the fixed-width plain text receipt handed to guests.
func (s *ReceiptService) RenderText(receipt *models.Receipt) string {
	var b strings.Builder
	line := strings.Repeat("=", 42)
	thin := strings.Repeat("-", 42)

	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "%s\n", center("ROYAL PALACE", 42))
	fmt.Fprintf(&b, "%s\n", center("Hotel & Restaurant", 42))
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Receipt No : %s\n", receipt.ReceiptNumber)
	fmt.Fprintf(&b, "Date       : %s\n", receipt.CreatedAt.Format("02 Jan 2006"))
	if receipt.PaymentID != "" {
		fmt.Fprintf(&b, "Payment ID : %s\n", receipt.PaymentID)
	}
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "Guest      : %s\n", receipt.GuestName)
	fmt.Fprintf(&b, "Room       : %s\n", receipt.RoomName)
	fmt.Fprintf(&b, "Check-in   : %s\n", receipt.CheckIn.Format("02 Jan 2006"))
	fmt.Fprintf(&b, "Check-out  : %s\n", receipt.CheckOut.Format("02 Jan 2006"))
	fmt.Fprintf(&b, "Nights     : %d\n", receipt.Nights)
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "%-28s %13s\n", fmt.Sprintf("Room (%d x %.2f)", receipt.Nights, receipt.PricePerNight), money(receipt.BasePrice))
	if receipt.ExtraGuestCharge > 0 {
		fmt.Fprintf(&b, "%-28s %13s\n", "Extra guests", money(receipt.ExtraGuestCharge))
	}
	if receipt.BreakfastCharge > 0 {
		fmt.Fprintf(&b, "%-28s %13s\n", "Breakfast", money(receipt.BreakfastCharge))
	}
	if receipt.Discount > 0 {
		fmt.Fprintf(&b, "%-28s %13s\n", "Discount", "-"+money(receipt.Discount))
	}
	fmt.Fprintf(&b, "%-28s %13s\n", "CGST @ 6.1% (included)", money(receipt.CGST))
	fmt.Fprintf(&b, "%-28s %13s\n", "SGST @ 6.1% (included)", money(receipt.SGST))
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "%-28s %13s\n", "TOTAL", money(receipt.Total))
	if receipt.Paid {
		fmt.Fprintf(&b, "%s\n", center("* PAID *", 42))
	}
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Verify: %s\n", receipt.QRPayload)
	return b.String()
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func money(v float64) string {
	return fmt.Sprintf("Rs %.2f", v)
}
