package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/checkfox/go_reassign/internal/client"
	"github.com/checkfox/go_reassign/internal/logger"
	"github.com/checkfox/go_reassign/internal/models"
	"github.com/checkfox/go_reassign/internal/queue"
	"github.com/checkfox/go_reassign/internal/repository"
)

// ActivityBackend is the slice of the CRM client the worker needs
type ActivityBackend interface {
	AppendActivity(ctx context.Context, leadID string, entry client.ActivityEntry) (int, error)
}

// Processor drains the background queue, delivering audit entries to the
// CRM backend's activity log. Delivery is best-effort from the caller's view
// but retried here with exponential backoff until the attempt budget runs
// out.
type Processor struct {
	queue                    queue.Queue
	auditRepo                repository.AuditRepository
	attemptRepo              repository.ActivityAttemptRepository
	backend                  ActivityBackend
	pollInterval             time.Duration
	maxDeliveryAttempts      int
	exponentialBackoffDelays []time.Duration
	shutdownChan             chan struct{}
}

// ProcessorConfig holds configuration for the worker processor
type ProcessorConfig struct {
	Queue                    queue.Queue
	AuditRepo                repository.AuditRepository
	AttemptRepo              repository.ActivityAttemptRepository
	Backend                  ActivityBackend
	PollInterval             time.Duration
	MaxDeliveryAttempts      int
	ExponentialBackoffDelays []time.Duration
}

// NewProcessor creates a new worker processor
func NewProcessor(config ProcessorConfig) *Processor {
	if config.PollInterval == 0 {
		config.PollInterval = 5 * time.Second
	}

	if config.MaxDeliveryAttempts == 0 {
		config.MaxDeliveryAttempts = 5
	}

	if len(config.ExponentialBackoffDelays) == 0 {
		config.ExponentialBackoffDelays = []time.Duration{
			30 * time.Second,
			60 * time.Second,
			120 * time.Second,
			240 * time.Second,
			480 * time.Second,
		}
	}

	return &Processor{
		queue:                    config.Queue,
		auditRepo:                config.AuditRepo,
		attemptRepo:              config.AttemptRepo,
		backend:                  config.Backend,
		pollInterval:             config.PollInterval,
		maxDeliveryAttempts:      config.MaxDeliveryAttempts,
		exponentialBackoffDelays: config.ExponentialBackoffDelays,
		shutdownChan:             make(chan struct{}),
	}
}

// Start begins the worker polling loop with graceful shutdown
func (p *Processor) Start(ctx context.Context) error {
	logger.Info(ctx, "Starting activity delivery worker", "poll_interval", p.pollInterval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context cancelled, shutting down gracefully")
			return ctx.Err()

		case <-sigChan:
			logger.Info(ctx, "Received shutdown signal, shutting down gracefully")
			return nil

		case <-p.shutdownChan:
			logger.Info(ctx, "Shutdown requested, shutting down gracefully")
			return nil

		case <-ticker.C:
			if err := p.pollAndProcess(ctx); err != nil {
				logger.LogError(ctx, "Error polling and processing jobs", err)
				// Keep polling regardless
			}
		}
	}
}

// Shutdown signals the worker to stop gracefully
func (p *Processor) Shutdown() {
	close(p.shutdownChan)
}

// pollAndProcess polls for a job and processes it. Failed deliveries are
// rescheduled with backoff until the attempt budget is exhausted, then the
// job is marked failed for good.
func (p *Processor) pollAndProcess(ctx context.Context) error {
	job, err := p.queue.Dequeue(ctx)
	if err != nil {
		return fmt.Errorf("failed to dequeue job: %w", err)
	}

	if job == nil {
		return nil
	}

	logger.Info(ctx, "Processing job", "job_id", job.ID, "job_type", job.Type)

	var processErr error
	switch job.Type {
	case queue.JobTypeDeliverActivity:
		processErr = p.deliverActivity(ctx, job)
	default:
		processErr = fmt.Errorf("unknown job type: %s", job.Type)
	}

	if processErr != nil {
		if job.Attempts < p.maxDeliveryAttempts {
			delay := p.backoffDelay(job.Attempts)
			logger.Warn(ctx, "Job failed, scheduling retry",
				"job_id", job.ID,
				"attempt", job.Attempts,
				"retry_in", delay.String(),
				"error", processErr.Error(),
			)
			if err := p.queue.Retry(ctx, job.ID, delay); err != nil {
				logger.LogError(ctx, "Failed to schedule job retry", err, "job_id", job.ID)
			}
			return nil
		}

		logger.LogError(ctx, "Job permanently failed", processErr, "job_id", job.ID, "attempts", job.Attempts)
		if err := p.queue.Fail(ctx, job.ID, processErr.Error()); err != nil {
			logger.LogError(ctx, "Failed to mark job as failed", err, "job_id", job.ID)
		}
		return processErr
	}

	if err := p.queue.Complete(ctx, job.ID); err != nil {
		logger.LogError(ctx, "Failed to mark job as completed", err, "job_id", job.ID)
		return err
	}

	logger.Info(ctx, "Job completed successfully", "job_id", job.ID)
	return nil
}

// deliverActivity posts one audit entry to the backend's activity log and
// records the attempt either way
func (p *Processor) deliverActivity(ctx context.Context, job *queue.Job) error {
	auditID, ok := queue.GetAuditID(job.Payload)
	if !ok {
		return fmt.Errorf("invalid job payload: missing audit_id")
	}

	leadID, ok := queue.GetLeadID(job.Payload)
	if !ok {
		return fmt.Errorf("invalid job payload: missing lead_id")
	}

	ctx = context.WithValue(ctx, logger.LeadIDKey, leadID)

	entry, err := p.auditRepo.GetAuditEntryByID(ctx, auditID)
	if err != nil {
		return fmt.Errorf("failed to load audit entry %d: %w", auditID, err)
	}

	if entry.Delivered {
		logger.Info(ctx, "Audit entry already delivered, skipping", "audit_id", auditID)
		return nil
	}

	attemptNo, err := p.attemptRepo.CountAttempts(ctx, auditID)
	if err != nil {
		logger.LogError(ctx, "Failed to count previous attempts", err, "audit_id", auditID)
		attemptNo = job.Attempts - 1
	}

	attempt := models.NewActivityAttempt(auditID, leadID, attemptNo+1)

	statusCode, deliverErr := p.backend.AppendActivity(ctx, leadID, client.ActivityEntry{
		Action:      entry.Action,
		ActorID:     entry.ActorID,
		Outcome:     entry.Outcome,
		Reason:      entry.Reason,
		FieldDeltas: entry.FieldDeltas,
		OccurredAt:  entry.CreatedAt,
	})

	if deliverErr != nil {
		attempt.MarkFailure(statusFromError(deliverErr), deliverErr.Error())
		if err := p.attemptRepo.CreateAttempt(ctx, attempt); err != nil {
			logger.LogError(ctx, "Failed to record delivery attempt", err, "audit_id", auditID)
		}
		return fmt.Errorf("activity delivery failed for audit %d: %w", auditID, deliverErr)
	}

	attempt.MarkSuccess(statusCode, "")
	if err := p.attemptRepo.CreateAttempt(ctx, attempt); err != nil {
		logger.LogError(ctx, "Failed to record delivery attempt", err, "audit_id", auditID)
	}

	if err := p.auditRepo.MarkDelivered(ctx, auditID); err != nil {
		return fmt.Errorf("failed to mark audit entry delivered: %w", err)
	}

	logger.Info(ctx, "Activity entry delivered", "audit_id", auditID, "status_code", statusCode)
	return nil
}

// backoffDelay returns the delay before the next retry for a given attempt
// count
func (p *Processor) backoffDelay(attempts int) time.Duration {
	idx := attempts - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(p.exponentialBackoffDelays) {
		idx = len(p.exponentialBackoffDelays) - 1
	}
	return p.exponentialBackoffDelays[idx]
}

// statusFromError extracts an HTTP status from a classified workflow error,
// when one exists
func statusFromError(err error) *int {
	var transportErr *models.TransportError
	if errors.As(err, &transportErr) && transportErr.StatusCode > 0 {
		code := transportErr.StatusCode
		return &code
	}

	var notFoundErr *models.NotFoundError
	if errors.As(err, &notFoundErr) {
		code := 404
		return &code
	}

	var conflictErr *models.ConflictError
	if errors.As(err, &conflictErr) {
		code := 409
		return &code
	}

	var permErr *models.PermissionError
	if errors.As(err, &permErr) {
		code := 403
		return &code
	}

	return nil
}
