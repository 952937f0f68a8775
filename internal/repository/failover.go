package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"royalpalace/internal/database"
	"royalpalace/internal/domain"
	"royalpalace/internal/models"

	"github.com/rs/zerolog"
)

func isNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}

const recoveryProbeInterval = time.Minute

// FailoverSessionStore routes calls to the primary store and falls back to
// the secondary when the primary errors. After a failover it probes the
// primary at most once per recoveryProbeInterval and switches back when the
// probe succeeds.
type FailoverSessionStore struct {
	primary   domain.SessionStore
	secondary domain.SessionStore
	logger    *zerolog.Logger

	usingSecondary atomic.Bool
	lastProbe      atomic.Int64
}

func NewFailoverSessionStore(primary, secondary domain.SessionStore, logger *zerolog.Logger) *FailoverSessionStore {
	return &FailoverSessionStore{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// active returns the store to use for the next call, probing the primary
// for recovery when the failover has lasted long enough.
func (f *FailoverSessionStore) active(ctx context.Context) domain.SessionStore {
	if !f.usingSecondary.Load() {
		return f.primary
	}

	now := time.Now().UnixNano()
	last := f.lastProbe.Load()
	if now-last < int64(recoveryProbeInterval) {
		return f.secondary
	}
	if !f.lastProbe.CompareAndSwap(last, now) {
		return f.secondary
	}

	if err := f.primary.Ping(ctx); err != nil {
		f.logger.Debug().Err(err).Msg("session store primary still unavailable")
		return f.secondary
	}

	f.usingSecondary.Store(false)
	f.logger.Info().Msg("session store recovered, switching back to primary")
	return f.primary
}

func (f *FailoverSessionStore) failover(err error) {
	if f.usingSecondary.CompareAndSwap(false, true) {
		f.lastProbe.Store(time.Now().UnixNano())
		f.logger.Warn().Err(err).Msg("session store primary failed, switching to fallback")
	}
}

func (f *FailoverSessionStore) SaveSession(ctx context.Context, session *models.AdminSession, ttl time.Duration) error {
	store := f.active(ctx)
	err := store.SaveSession(ctx, session, ttl)
	if err != nil && store == f.primary {
		f.failover(err)
		return f.secondary.SaveSession(ctx, session, ttl)
	}
	return err
}

func (f *FailoverSessionStore) GetSession(ctx context.Context, token string) (*models.AdminSession, error) {
	store := f.active(ctx)
	session, err := store.GetSession(ctx, token)
	if err != nil && store == f.primary && !isNotFound(err) {
		f.failover(err)
		return f.secondary.GetSession(ctx, token)
	}
	return session, err
}

func (f *FailoverSessionStore) DeleteSession(ctx context.Context, token string) error {
	store := f.active(ctx)
	err := store.DeleteSession(ctx, token)
	if err != nil && store == f.primary {
		f.failover(err)
		return f.secondary.DeleteSession(ctx, token)
	}
	return err
}

func (f *FailoverSessionStore) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	store := f.active(ctx)
	allowed, err := store.CheckRateLimit(ctx, key, limit, window)
	if err != nil && store == f.primary {
		f.failover(err)
		return f.secondary.CheckRateLimit(ctx, key, limit, window)
	}
	return allowed, err
}

func (f *FailoverSessionStore) Ping(ctx context.Context) error {
	if err := f.primary.Ping(ctx); err != nil {
		return f.secondary.Ping(ctx)
	}
	return nil
}
