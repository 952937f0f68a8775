package service

import (
	"context"
	"errors"
	"time"

	"royalpalace/internal/database"
	"royalpalace/internal/domain"
	"royalpalace/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// SessionService handles admin logins. Sessions are explicit values in the
// session store; nothing here mutates shared state beyond the store itself.
type SessionService struct {
	staff    domain.StaffStore
	sessions domain.SessionStore
	logger   *zerolog.Logger
	ttl      time.Duration
}

func NewSessionService(staff domain.StaffStore, sessions domain.SessionStore, logger *zerolog.Logger, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = time.Duration(models.DefaultSessionTTL) * time.Second
	}
	return &SessionService{staff: staff, sessions: sessions, logger: logger, ttl: ttl}
}

// Login verifies credentials and returns a fresh session. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *SessionService) Login(ctx context.Context, email, password string) (*models.AdminSession, error) {
	staff, err := s.staff.GetStaffByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !staff.IsActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	session := &models.AdminSession{
		Token:      uuid.NewString(),
		StaffID:    staff.ID,
		Name:       staff.Name,
		Role:       staff.Role,
		LoggedInAt: now,
		ExpiresAt:  now.Add(s.ttl),
	}
	if err := s.sessions.SaveSession(ctx, session, s.ttl); err != nil {
		return nil, err
	}

	if err := s.staff.TouchStaffLogin(ctx, staff.ID); err != nil {
		s.logger.Warn().Err(err).Int64("staff_id", staff.ID).Msg("failed to record login time")
	}

	s.logger.Info().Int64("staff_id", staff.ID).Str("role", staff.Role).Msg("admin logged in")
	return session, nil
}

// Authenticate resolves a token to its session.
func (s *SessionService) Authenticate(ctx context.Context, token string) (*models.AdminSession, error) {
	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		_ = s.sessions.DeleteSession(ctx, token)
		return nil, database.ErrNotFound
	}
	return session, nil
}

func (s *SessionService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// HashPassword is used by seeding and staff management.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
