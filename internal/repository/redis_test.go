package repository

import (
	"context"
	"testing"
	"time"

	"royalpalace/internal/database"
	"royalpalace/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSessionStoreFromClient(client), mr
}

func testSession(token string) *models.AdminSession {
	now := time.Now().Truncate(time.Second)
	return &models.AdminSession{
		Token:      token,
		StaffID:    7,
		Name:       "Priya Sharma",
		Role:       models.RoleManager,
		LoggedInAt: now,
		ExpiresAt:  now.Add(24 * time.Hour),
	}
}

func TestRedisSessionStore_SaveGetDelete(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	session := testSession("tok-1")
	require.NoError(t, store.SaveSession(ctx, session, time.Hour))

	got, err := store.GetSession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.StaffID)
	assert.Equal(t, models.RoleManager, got.Role)

	require.NoError(t, store.DeleteSession(ctx, "tok-1"))
	_, err = store.GetSession(ctx, "tok-1")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRedisSessionStore_TTLExpiry(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, testSession("tok-2"), time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := store.GetSession(ctx, "tok-2")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRedisSessionStore_RateLimit(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := store.CheckRateLimit(ctx, "1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := store.CheckRateLimit(ctx, "1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Window reset clears the counter
	mr.FastForward(2 * time.Minute)
	allowed, err = store.CheckRateLimit(ctx, "1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestFailoverSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := zerolog.Nop()
	primary := NewRedisSessionStoreFromClient(client)
	secondary := NewMemorySessionStore()
	store := NewFailoverSessionStore(primary, secondary, &logger)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, testSession("tok-3"), time.Hour))

	// Kill the primary: the next write lands in the fallback
	mr.Close()
	require.NoError(t, store.SaveSession(ctx, testSession("tok-4"), time.Hour))

	got, err := store.GetSession(ctx, "tok-4")
	require.NoError(t, err)
	assert.Equal(t, "tok-4", got.Token)
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, testSession("tok-5"), -time.Second))
	_, err := store.GetSession(ctx, "tok-5")
	assert.ErrorIs(t, err, database.ErrNotFound)
}
