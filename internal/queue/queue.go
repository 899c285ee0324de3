package queue

import (
	"context"
	"encoding/json"
	"time"
)

// JobTypeDeliverActivity delivers a local audit entry to the CRM backend's
// activity log. Delivery is asynchronous so that a slow or failing activity
// endpoint never delays the action that produced the entry.
const JobTypeDeliverActivity = "deliver_activity"

// Job represents a background job to be processed
type Job struct {
	ID        int64                  `json:"id"`
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"created_at"`
	NextRunAt time.Time              `json:"next_run_at"`
	Attempts  int                    `json:"attempts"`
}

// Queue defines the interface for job queue operations
type Queue interface {
	// Enqueue adds a new job to the queue
	Enqueue(ctx context.Context, jobType string, payload map[string]interface{}) error

	// EnqueueWithDelay adds a job to be processed after a delay
	EnqueueWithDelay(ctx context.Context, jobType string, payload map[string]interface{}, delay time.Duration) error

	// Dequeue retrieves the next available job from the queue
	// Returns nil if no jobs are available
	Dequeue(ctx context.Context) (*Job, error)

	// Complete marks a job as successfully completed and removes it from the queue
	Complete(ctx context.Context, jobID int64) error

	// Retry reschedules a job for retry with a delay
	Retry(ctx context.Context, jobID int64, delay time.Duration) error

	// Fail marks a job as permanently failed
	Fail(ctx context.Context, jobID int64, errorMsg string) error

	// HealthCheck verifies the queue is operational
	HealthCheck(ctx context.Context) error

	// Close closes the queue connection
	Close() error
}

// NewActivityJobPayload builds the payload for a deliver_activity job
func NewActivityJobPayload(auditID int64, leadID string) map[string]interface{} {
	return map[string]interface{}{
		"audit_id": auditID,
		"lead_id":  leadID,
	}
}

// GetAuditID extracts audit_id from a job payload
func GetAuditID(payload map[string]interface{}) (int64, bool) {
	return extractInt64(payload, "audit_id")
}

// GetLeadID extracts lead_id from a job payload
func GetLeadID(payload map[string]interface{}) (string, bool) {
	value, ok := payload["lead_id"]
	if !ok {
		return "", false
	}

	leadID, ok := value.(string)
	if !ok || leadID == "" {
		return "", false
	}
	return leadID, true
}

// extractInt64 reads a numeric payload field across the types JSON decoding
// can produce
func extractInt64(payload map[string]interface{}, key string) (int64, bool) {
	value, ok := payload[key]
	if !ok {
		return 0, false
	}

	switch v := value.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
	}

	return 0, false
}
