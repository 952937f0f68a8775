package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"royalpalace/internal/domain"
	"royalpalace/internal/metrics"
	"royalpalace/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SheetsWorker drains the sync_queue table and mirrors bookings into the
// back-office spreadsheet. The sqlite row is the source of truth; the redis
// list and the in-memory channel are only wake-up hints, so a task is never
// lost when either is unavailable.
type SheetsWorker struct {
	store         domain.SyncQueueStore
	sheets        domain.SheetsWriter
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan int64
	redisQueueKey string
	pollInterval  time.Duration
	batchSize     int
	logger        *zerolog.Logger
}

func NewSheetsWorker(store domain.SyncQueueStore, sheets domain.SheetsWriter, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *SheetsWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &SheetsWorker{
		store:         store,
		sheets:        sheets,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan int64, models.WorkerQueueSize),
		redisQueueKey: "sheets:queue",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		logger:        logger,
	}
}

// Notify wakes the worker for a task already persisted in sync_queue.
func (w *SheetsWorker) Notify(ctx context.Context, taskID int64) {
	if w.redis != nil {
		if err := w.redis.LPush(ctx, w.redisQueueKey, taskID).Err(); err == nil {
			return
		}
	}
	select {
	case w.queue <- taskID:
	default:
		// Queue full: the polling loop will pick the task up.
	}
}

// Start launches the main loop; stops when ctx is done.
func (w *SheetsWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("sheets worker started")
	defer w.logger.Info().Msg("sheets worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.queue:
		case <-time.After(w.pollInterval):
			w.drainRedisHints(ctx)
		}

		w.processPending(ctx)
	}
}

func (w *SheetsWorker) drainRedisHints(ctx context.Context) {
	if w.redis == nil {
		return
	}
	for {
		_, err := w.redis.RPop(ctx, w.redisQueueKey).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				w.logger.Debug().Err(err).Msg("redis hint pop failed")
			}
			return
		}
	}
}

func (w *SheetsWorker) processPending(ctx context.Context) {
	tasks, err := w.store.GetPendingSyncTasks(ctx, w.batchSize)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to fetch pending sync tasks")
		return
	}
	for _, task := range tasks {
		w.processTask(ctx, task)
	}
}

func (w *SheetsWorker) processTask(ctx context.Context, task *models.SyncTask) {
	err := w.handleTask(ctx, task)
	if err == nil {
		if err := w.store.MarkSyncTaskDone(ctx, task.ID); err != nil {
			w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("failed to mark sync task done")
		}
		metrics.SyncTasksProcessed.WithLabelValues("done").Inc()
		return
	}

	attempt := task.RetryCount + 1
	nextRetryAt := time.Now().Add(w.retryPolicy.NextDelay(attempt))
	if markErr := w.store.MarkSyncTaskRetry(ctx, task.ID, err, nextRetryAt, w.retryPolicy.MaxRetries); markErr != nil {
		w.logger.Error().Err(markErr).Int64("task_id", task.ID).Msg("failed to mark sync task retry")
		return
	}

	if attempt >= w.retryPolicy.MaxRetries {
		metrics.SyncTasksProcessed.WithLabelValues("failed").Inc()
		w.logger.Error().Err(err).
			Int64("task_id", task.ID).
			Str("booking_id", task.BookingID).
			Msg("sync task failed permanently")
	} else {
		metrics.SyncTasksProcessed.WithLabelValues("retry").Inc()
		w.logger.Warn().Err(err).
			Int64("task_id", task.ID).
			Int("attempt", attempt).
			Msg("sync task will retry")
	}
}

func (w *SheetsWorker) handleTask(ctx context.Context, task *models.SyncTask) error {
	switch task.TaskType {
	case models.SyncTaskBookingUpsert:
		var booking models.Booking
		if err := json.Unmarshal([]byte(task.Payload), &booking); err != nil {
			return fmt.Errorf("decode booking payload: %w", err)
		}
		return w.sheets.AppendBookingRow(ctx, &booking)
	case models.SyncTaskBookingDelete:
		if task.BookingID == "" {
			return errors.New("booking id missing")
		}
		return w.sheets.RemoveBookingRow(ctx, task.BookingID)
	default:
		return fmt.Errorf("unknown task type: %s", task.TaskType)
	}
}
