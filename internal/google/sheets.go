package google

import (
	"context"
	"fmt"
	"os"
	"sync"

	"royalpalace/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsService mirrors bookings into the back-office spreadsheet. Row
// positions are cached per booking id so deletes and re-appends do not have
// to scan the sheet every time.
type SheetsService struct {
	service   *sheets.Service
	sheetID   string
	sheetName string
	rowCache  map[string]int
	cacheMu   sync.RWMutex
}

func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID, sheetName string) (*SheetsService, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return &SheetsService{
		service:   srv,
		sheetID:   spreadsheetID,
		sheetName: sheetName,
		rowCache:  make(map[string]int),
	}, nil
}

// TestConnection reads one cell to verify access to the spreadsheet.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.sheetID, s.sheetName+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

func bookingRow(b *models.Booking) []interface{} {
	return []interface{}{
		b.ID,
		b.RoomName,
		b.GuestName,
		b.Email,
		b.Phone,
		b.CheckIn.Format(models.DateLayout),
		b.CheckOut.Format(models.DateLayout),
		b.Guests,
		b.TotalPrice,
		b.Status,
		b.PaymentStatus,
		b.BookingType,
		b.PromoCode,
	}
}

// AppendBookingRow writes a booking to the sheet, updating the existing row
// when the booking was synced before.
func (s *SheetsService) AppendBookingRow(ctx context.Context, booking *models.Booking) error {
	s.cacheMu.RLock()
	row, known := s.rowCache[booking.ID]
	s.cacheMu.RUnlock()

	values := &sheets.ValueRange{Values: [][]interface{}{bookingRow(booking)}}

	if known {
		rangeRef := fmt.Sprintf("%s!A%d", s.sheetName, row)
		_, err := s.service.Spreadsheets.Values.Update(s.sheetID, rangeRef, values).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update booking row: %w", err)
		}
		return nil
	}

	resp, err := s.service.Spreadsheets.Values.Append(s.sheetID, s.sheetName+"!A1", values).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append booking row: %w", err)
	}

	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		if row, ok := parseRowFromRange(resp.Updates.UpdatedRange); ok {
			s.cacheMu.Lock()
			s.rowCache[booking.ID] = row
			s.cacheMu.Unlock()
		}
	}
	return nil
}

// RemoveBookingRow blanks the synced row for a deleted booking. Blanking
// instead of deleting keeps every cached row position stable.
func (s *SheetsService) RemoveBookingRow(ctx context.Context, bookingID string) error {
	s.cacheMu.RLock()
	row, known := s.rowCache[bookingID]
	s.cacheMu.RUnlock()
	if !known {
		var err error
		row, err = s.findBookingRow(ctx, bookingID)
		if err != nil {
			return err
		}
		if row == 0 {
			return nil
		}
	}

	rangeRef := fmt.Sprintf("%s!A%d:M%d", s.sheetName, row, row)
	_, err := s.service.Spreadsheets.Values.Clear(s.sheetID, rangeRef, &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear booking row: %w", err)
	}

	s.cacheMu.Lock()
	delete(s.rowCache, bookingID)
	s.cacheMu.Unlock()
	return nil
}

// findBookingRow scans column A for the booking id. Returns 0 when absent.
func (s *SheetsService) findBookingRow(ctx context.Context, bookingID string) (int, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.sheetID, s.sheetName+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("scan booking column: %w", err)
	}
	for i, row := range resp.Values {
		if len(row) > 0 && fmt.Sprint(row[0]) == bookingID {
			return i + 1, nil
		}
	}
	return 0, nil
}

// parseRowFromRange extracts the row number from a range like "Bookings!A42:M42".
func parseRowFromRange(ref string) (int, bool) {
	row := 0
	seenDigit := false
	for _, r := range ref {
		if r >= '0' && r <= '9' {
			row = row*10 + int(r-'0')
			seenDigit = true
			continue
		}
		if seenDigit {
			break
		}
	}
	return row, seenDigit
}
