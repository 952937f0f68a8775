package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"royalpalace/internal/models"
)

// EnqueueSyncTask persists a sheet sync job so it survives restarts.
func (db *DB) EnqueueSyncTask(ctx context.Context, taskType, bookingID, payload string) (int64, error) {
	query := `INSERT INTO sync_queue (task_type, booking_id, payload, status, created_at)
	          VALUES (?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, taskType, bookingID, payload, models.SyncStatusPending, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue sync task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// GetPendingSyncTasks returns tasks ready to run, oldest first. Tasks with a
// future next_retry_at are skipped until their backoff elapses.
func (db *DB) GetPendingSyncTasks(ctx context.Context, limit int) ([]*models.SyncTask, error) {
	query := `SELECT id, task_type, booking_id, payload, status, retry_count, last_error,
	                 created_at, processed_at, next_retry_at
	          FROM sync_queue
	          WHERE status = ? AND (next_retry_at IS NULL OR next_retry_at <= ?)
	          ORDER BY created_at LIMIT ?`
	rows, err := db.QueryContext(ctx, query, models.SyncStatusPending, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending sync tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.SyncTask
	for rows.Next() {
		task := &models.SyncTask{}
		var payload, lastError sql.NullString
		var processedAt, nextRetryAt sql.NullTime
		err := rows.Scan(
			&task.ID, &task.TaskType, &task.BookingID, &payload, &task.Status,
			&task.RetryCount, &lastError, &task.CreatedAt, &processedAt, &nextRetryAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync task: %w", err)
		}
		task.Payload = payload.String
		if lastError.Valid {
			task.LastError = &lastError.String
		}
		if processedAt.Valid {
			task.ProcessedAt = &processedAt.Time
		}
		if nextRetryAt.Valid {
			task.NextRetryAt = &nextRetryAt.Time
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (db *DB) MarkSyncTaskDone(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE sync_queue SET status = ?, processed_at = ? WHERE id = ?`,
		models.SyncStatusDone, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark sync task done: %w", err)
	}
	return nil
}

// MarkSyncTaskRetry records a failed attempt. After maxRetries the task is
// parked as failed and left for operator inspection.
func (db *DB) MarkSyncTaskRetry(ctx context.Context, id int64, taskErr error, nextRetryAt time.Time, maxRetries int) error {
	query := `UPDATE sync_queue
	          SET retry_count = retry_count + 1,
	              last_error = ?,
	              next_retry_at = ?,
	              status = CASE WHEN retry_count + 1 >= ? THEN ? ELSE ? END
	          WHERE id = ?`
	_, err := db.ExecContext(ctx, query,
		taskErr.Error(), nextRetryAt, maxRetries, models.SyncStatusFailed, models.SyncStatusPending, id)
	if err != nil {
		return fmt.Errorf("failed to mark sync task retry: %w", err)
	}
	return nil
}

// PurgeProcessedSyncTasks deletes done tasks older than the cutoff.
func (db *DB) PurgeProcessedSyncTasks(ctx context.Context, before time.Time) (int64, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM sync_queue WHERE status = ? AND processed_at < ?`,
		models.SyncStatusDone, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sync tasks: %w", err)
	}
	return result.RowsAffected()
}
