package models

import "time"

// AvailabilityDay is one (room, date) status record. At most one row exists
// per pair; a missing row means the date is available.
type AvailabilityDay struct {
	ID        int64     `json:"id"`
	RoomID    int64     `json:"room_id"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
	Source    string    `json:"source"`
	BookingID string    `json:"booking_id,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// statusPriority orders day statuses from most to least restrictive.
// Lower number wins when a range is collapsed to a single display status.
var statusPriority = map[string]int{
	DayMaintenance:    1,
	DayUnavailable:    2,
	DayOfflineBooking: 3,
	DayOnlineBooking:  4,
	DayAvailable:      5,
}

// StatusPriority returns the priority rank of a day status. Unknown statuses
// rank after available so they never mask real restrictions.
func StatusPriority(status string) int {
	if p, ok := statusPriority[status]; ok {
		return p
	}
	return len(statusPriority) + 1
}

// MostRestrictive picks the winning status across a set of day statuses.
func MostRestrictive(statuses []string) string {
	winner := DayAvailable
	best := StatusPriority(winner)
	for _, s := range statuses {
		if p := StatusPriority(s); p < best {
			winner, best = s, p
		}
	}
	return winner
}

// IsBlocking reports whether a day status makes the date unbookable.
func IsBlocking(status string) bool {
	switch status {
	case DayOnlineBooking, DayOfflineBooking, DayMaintenance, DayUnavailable:
		return true
	}
	return false
}

// DisplayLabel maps a day status to the label shown to guests. Both booking
// variants collapse to "booked"; the online/offline split is back-office only.
func DisplayLabel(status string) string {
	switch status {
	case DayOnlineBooking, DayOfflineBooking:
		return RoomBooked
	case DayMaintenance:
		return RoomMaintenance
	case DayUnavailable:
		return RoomUnavailable
	default:
		return RoomAvailable
	}
}
