package models

import "time"

// AuditEntry records one dispatched reassignment action and its outcome.
// Entries are written after the primary backend transition succeeds and are
// delivered to the backend's activity log asynchronously.
type AuditEntry struct {
	ID          int64          `json:"id" db:"id"`
	LeadID      string         `json:"lead_id" db:"lead_id"`
	ActorID     string         `json:"actor_id" db:"actor_id"`
	Action      string         `json:"action" db:"action"`
	Outcome     string         `json:"outcome" db:"outcome"`
	Reason      *string        `json:"reason,omitempty" db:"reason"`
	FieldDeltas FieldDeltaList `json:"field_deltas,omitempty" db:"field_deltas"`
	Delivered   bool           `json:"delivered" db:"delivered"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// ActivityAttempt represents a single attempt to deliver an audit entry to
// the CRM backend's activity log
type ActivityAttempt struct {
	ID             int64     `json:"id" db:"id"`
	AuditID        int64     `json:"audit_id" db:"audit_id"`
	LeadID         string    `json:"lead_id" db:"lead_id"`
	AttemptNo      int       `json:"attempt_no" db:"attempt_no"`
	RequestedAt    time.Time `json:"requested_at" db:"requested_at"`
	ResponseStatus *int      `json:"response_status,omitempty" db:"response_status"`
	ResponseBody   *string   `json:"response_body,omitempty" db:"response_body"`
	ErrorMessage   *string   `json:"error_message,omitempty" db:"error_message"`
	Success        bool      `json:"success" db:"success"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// NewActivityAttempt creates a new delivery attempt for an audit entry
func NewActivityAttempt(auditID int64, leadID string, attemptNo int) *ActivityAttempt {
	now := time.Now()
	return &ActivityAttempt{
		AuditID:     auditID,
		LeadID:      leadID,
		AttemptNo:   attemptNo,
		RequestedAt: now,
		Success:     false,
		CreatedAt:   now,
	}
}

// MarkSuccess marks the delivery attempt as successful
func (a *ActivityAttempt) MarkSuccess(statusCode int, responseBody string) {
	a.Success = true
	a.ResponseStatus = &statusCode
	a.ResponseBody = &responseBody
}

// MarkFailure marks the delivery attempt as failed
func (a *ActivityAttempt) MarkFailure(statusCode *int, errorMessage string) {
	a.Success = false
	a.ResponseStatus = statusCode
	a.ErrorMessage = &errorMessage
}
