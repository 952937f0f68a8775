package models

import "time"

// AdminSession is an explicit back-office session value. Login and logout
// return new session values; nothing mutates a shared singleton.
type AdminSession struct {
	Token      string    `json:"token"`
	StaffID    int64     `json:"staff_id"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	LoggedInAt time.Time `json:"logged_in_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the session lapsed at the given time.
func (s *AdminSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

const (
	RoleManager      = "manager"
	RoleReceptionist = "receptionist"
)
