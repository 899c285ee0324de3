package worker

import (
	"context"
	"time"

	"github.com/checkfox/go_reassign/internal/logger"
	"github.com/robfig/cron/v3"
)

// JanitorQueue is the maintenance surface of the job queue
type JanitorQueue interface {
	PurgeCompleted(ctx context.Context, olderThan time.Duration) (int64, error)
	ReleaseStuck(ctx context.Context, stuckFor time.Duration) (int64, error)
}

// Janitor runs scheduled queue maintenance: purging completed jobs past the
// retention window and releasing jobs a dead worker left in processing.
type Janitor struct {
	queue     JanitorQueue
	retention time.Duration
	stuckFor  time.Duration
	cron      *cron.Cron
}

// NewJanitor creates a new Janitor instance
func NewJanitor(q JanitorQueue, retention time.Duration) *Janitor {
	return &Janitor{
		queue:     q,
		retention: retention,
		stuckFor:  30 * time.Minute,
		cron:      cron.New(),
	}
}

// Start schedules the daily sweep and an hourly stuck-job release
func (j *Janitor) Start(ctx context.Context) error {
	if _, err := j.cron.AddFunc("0 3 * * *", func() { j.sweep(ctx) }); err != nil {
		return err
	}
	if _, err := j.cron.AddFunc("@hourly", func() { j.releaseStuck(ctx) }); err != nil {
		return err
	}

	j.cron.Start()
	logger.Info(ctx, "Queue janitor scheduled", "retention", j.retention.String())
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish
func (j *Janitor) Stop() {
	stopCtx := j.cron.Stop()
	<-stopCtx.Done()
}

// sweep purges completed jobs older than the retention window
func (j *Janitor) sweep(ctx context.Context) {
	purged, err := j.queue.PurgeCompleted(ctx, j.retention)
	if err != nil {
		logger.LogError(ctx, "Janitor purge failed", err)
		return
	}

	logger.Info(ctx, "Janitor purge complete", "jobs_purged", purged)
}

// releaseStuck returns stale processing jobs to pending
func (j *Janitor) releaseStuck(ctx context.Context) {
	released, err := j.queue.ReleaseStuck(ctx, j.stuckFor)
	if err != nil {
		logger.LogError(ctx, "Janitor stuck-job release failed", err)
		return
	}

	if released > 0 {
		logger.Warn(ctx, "Janitor released stuck jobs", "jobs_released", released)
	}
}
