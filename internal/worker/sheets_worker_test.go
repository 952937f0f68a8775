package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"royalpalace/internal/database"
	"royalpalace/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSheets struct {
	appended []string
	removed  []string
	fail     int
}

func (f *fakeSheets) AppendBookingRow(_ context.Context, b *models.Booking) error {
	if f.fail > 0 {
		f.fail--
		return assert.AnError
	}
	f.appended = append(f.appended, b.ID)
	return nil
}

func (f *fakeSheets) RemoveBookingRow(_ context.Context, bookingID string) error {
	f.removed = append(f.removed, bookingID)
	return nil
}

func setupWorker(t *testing.T, sheets *fakeSheets, retries int) (*SheetsWorker, *database.DB) {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	w := NewSheetsWorker(db, sheets, nil, RetryPolicy{MaxRetries: retries, InitialDelay: time.Millisecond}, &logger)
	return w, db
}

func enqueueBooking(t *testing.T, db *database.DB, id string) int64 {
	t.Helper()
	payload, err := json.Marshal(&models.Booking{ID: id, GuestName: "Arjun Mehta"})
	require.NoError(t, err)
	taskID, err := db.EnqueueSyncTask(context.Background(), models.SyncTaskBookingUpsert, id, string(payload))
	require.NoError(t, err)
	return taskID
}

func TestProcessPending_Upsert(t *testing.T) {
	sheets := &fakeSheets{}
	w, db := setupWorker(t, sheets, 3)
	ctx := context.Background()

	enqueueBooking(t, db, "b1")
	w.processPending(ctx)

	assert.Equal(t, []string{"b1"}, sheets.appended)

	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestProcessPending_Delete(t *testing.T) {
	sheets := &fakeSheets{}
	w, db := setupWorker(t, sheets, 3)
	ctx := context.Background()

	_, err := db.EnqueueSyncTask(ctx, models.SyncTaskBookingDelete, "b2", "")
	require.NoError(t, err)
	w.processPending(ctx)

	assert.Equal(t, []string{"b2"}, sheets.removed)
}

func TestProcessPending_RetryThenSucceed(t *testing.T) {
	sheets := &fakeSheets{fail: 1}
	w, db := setupWorker(t, sheets, 3)
	ctx := context.Background()

	enqueueBooking(t, db, "b3")

	// First pass fails and schedules a retry
	w.processPending(ctx)
	assert.Empty(t, sheets.appended)

	// Wait out the backoff, second pass succeeds
	time.Sleep(10 * time.Millisecond)
	w.processPending(ctx)
	assert.Equal(t, []string{"b3"}, sheets.appended)
}

func TestProcessPending_PermanentFailure(t *testing.T) {
	sheets := &fakeSheets{fail: 100}
	w, db := setupWorker(t, sheets, 1)
	ctx := context.Background()

	enqueueBooking(t, db, "b4")
	w.processPending(ctx)

	// One retry allowed means the first failure parks the task
	time.Sleep(10 * time.Millisecond)
	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestRetryPolicyNextDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: time.Second, MaxDelay: 10 * time.Second, BackoffFactor: 2}

	assert.Equal(t, time.Second, p.NextDelay(1))
	assert.Equal(t, 2*time.Second, p.NextDelay(2))
	assert.Equal(t, 4*time.Second, p.NextDelay(3))
	// Clamped to the maximum
	assert.Equal(t, 10*time.Second, p.NextDelay(10))
	// Out-of-range attempt is treated as the first
	assert.Equal(t, time.Second, p.NextDelay(0))
}
