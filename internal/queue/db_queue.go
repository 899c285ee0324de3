package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Job lifecycle statuses in the background_jobs table
const (
	statusPending    = "pending"
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

// DBQueue implements Queue on top of PostgreSQL. Dequeue uses
// FOR UPDATE SKIP LOCKED so multiple worker processes can poll the same
// table without handing out the same job twice.
type DBQueue struct {
	db *sql.DB
}

// NewDBQueue creates a database-backed queue, creating the jobs table on
// first use
func NewDBQueue(db *sql.DB) (*DBQueue, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	q := &DBQueue{db: db}
	if err := q.ensureTable(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure jobs table: %w", err)
	}
	return q, nil
}

func (q *DBQueue) ensureTable(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS background_jobs (
			id SERIAL PRIMARY KEY,
			job_type VARCHAR(100) NOT NULL,
			payload JSONB NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			next_run_at TIMESTAMP NOT NULL DEFAULT NOW(),
			attempts INT NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			error_message TEXT,
			completed_at TIMESTAMP,
			failed_at TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_background_jobs_next_run
			ON background_jobs(next_run_at) WHERE status = 'pending'`,
		`CREATE INDEX IF NOT EXISTS idx_background_jobs_status
			ON background_jobs(status)`,
	}

	for _, stmt := range statements {
		if _, err := q.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Enqueue adds a job to be processed as soon as a worker polls
func (q *DBQueue) Enqueue(ctx context.Context, jobType string, payload map[string]interface{}) error {
	return q.EnqueueWithDelay(ctx, jobType, payload, 0)
}

// EnqueueWithDelay adds a job that becomes runnable after the delay
func (q *DBQueue) EnqueueWithDelay(ctx context.Context, jobType string, payload map[string]interface{}, delay time.Duration) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal job payload: %w", err)
	}

	_, err = q.db.ExecContext(ctx,
		"INSERT INTO background_jobs (job_type, payload, next_run_at) VALUES ($1, $2, $3)",
		jobType, payloadJSON, time.Now().Add(delay),
	)
	if err != nil {
		if isDatabaseUnavailable(err) {
			return fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
		}
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// Dequeue claims the next runnable job, bumping its attempt counter. Returns
// nil with no error when the queue is empty.
func (q *DBQueue) Dequeue(ctx context.Context) (*Job, error) {
	const query = `
		UPDATE background_jobs
		SET status = 'processing', attempts = attempts + 1
		WHERE id = (
			SELECT id FROM background_jobs
			WHERE status = 'pending' AND next_run_at <= NOW()
			ORDER BY next_run_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, job_type, payload, created_at, next_run_at, attempts
	`

	var job Job
	var payloadJSON []byte

	err := q.db.QueryRowContext(ctx, query).Scan(
		&job.ID, &job.Type, &payloadJSON, &job.CreatedAt, &job.NextRunAt, &job.Attempts,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}

	if err := json.Unmarshal(payloadJSON, &job.Payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &job, nil
}

// Complete marks a job as successfully finished
func (q *DBQueue) Complete(ctx context.Context, jobID int64) error {
	result, err := q.db.ExecContext(ctx,
		"UPDATE background_jobs SET status = $2, completed_at = NOW() WHERE id = $1",
		jobID, statusCompleted,
	)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	return requireRow(result, jobID)
}

// Retry returns a job to pending, runnable again after the delay
func (q *DBQueue) Retry(ctx context.Context, jobID int64, delay time.Duration) error {
	result, err := q.db.ExecContext(ctx,
		"UPDATE background_jobs SET status = $2, next_run_at = $3 WHERE id = $1",
		jobID, statusPending, time.Now().Add(delay),
	)
	if err != nil {
		return fmt.Errorf("failed to retry job: %w", err)
	}
	return requireRow(result, jobID)
}

// Fail marks a job as permanently failed, keeping the last error for
// inspection
func (q *DBQueue) Fail(ctx context.Context, jobID int64, errorMsg string) error {
	result, err := q.db.ExecContext(ctx,
		"UPDATE background_jobs SET status = $2, error_message = $3, failed_at = NOW() WHERE id = $1",
		jobID, statusFailed, errorMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to mark job as failed: %w", err)
	}
	return requireRow(result, jobID)
}

// PurgeCompleted deletes completed jobs older than the retention window.
// Run by the scheduled janitor; keeps the background_jobs table from growing
// without bound.
func (q *DBQueue) PurgeCompleted(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		"DELETE FROM background_jobs WHERE status = $1 AND completed_at < NOW() - $2::interval",
		statusCompleted, asInterval(olderThan),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge completed jobs: %w", err)
	}
	return result.RowsAffected()
}

// ReleaseStuck returns jobs stuck in 'processing' to 'pending'. A worker
// that dies mid-job leaves its row in processing forever otherwise.
func (q *DBQueue) ReleaseStuck(ctx context.Context, stuckFor time.Duration) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		"UPDATE background_jobs SET status = $1, next_run_at = NOW() WHERE status = $2 AND next_run_at < NOW() - $3::interval",
		statusPending, statusProcessing, asInterval(stuckFor),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to release stuck jobs: %w", err)
	}
	return result.RowsAffected()
}

// HealthCheck verifies the queue's database connection is usable
func (q *DBQueue) HealthCheck(ctx context.Context) error {
	var one int
	if err := q.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("queue health check failed: %w", err)
	}
	return nil
}

// Close is a no-op; the queue does not own the database connection
func (q *DBQueue) Close() error {
	return nil
}

// requireRow turns a zero-row update into ErrJobNotFound
func requireRow(result sql.Result, jobID int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: job %d", ErrJobNotFound, jobID)
	}
	return nil
}

func asInterval(d time.Duration) string {
	return fmt.Sprintf("%d seconds", int(d.Seconds()))
}

// isDatabaseUnavailable reports whether an error looks like the database
// itself being unreachable rather than a query problem
func isDatabaseUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if err == sql.ErrConnDone || err == sql.ErrTxDone {
		return true
	}
	msg := err.Error()
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"timeout",
		"too many connections",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
