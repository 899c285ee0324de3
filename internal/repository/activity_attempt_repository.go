package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/checkfox/go_reassign/internal/models"
)

// ActivityAttemptRepository defines the interface for activity delivery
// attempt persistence
type ActivityAttemptRepository interface {
	// CreateAttempt creates a new activity delivery attempt record
	CreateAttempt(ctx context.Context, attempt *models.ActivityAttempt) error

	// GetAttemptsByAuditID retrieves all attempts for an audit entry
	GetAttemptsByAuditID(ctx context.Context, auditID int64) ([]*models.ActivityAttempt, error)

	// CountAttempts returns the number of attempts for an audit entry
	CountAttempts(ctx context.Context, auditID int64) (int, error)
}

// activityAttemptRepository is the concrete implementation of
// ActivityAttemptRepository
type activityAttemptRepository struct {
	db *sql.DB
}

// NewActivityAttemptRepository creates a new ActivityAttemptRepository instance
func NewActivityAttemptRepository(db *sql.DB) ActivityAttemptRepository {
	return &activityAttemptRepository{
		db: db,
	}
}

// CreateAttempt creates a new activity delivery attempt record
func (r *activityAttemptRepository) CreateAttempt(ctx context.Context, attempt *models.ActivityAttempt) error {
	query := `
		INSERT INTO activity_attempt (
			audit_id, lead_id, attempt_no, requested_at, response_status,
			response_body, error_message, success, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	now := time.Now()
	if attempt.RequestedAt.IsZero() {
		attempt.RequestedAt = now
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = now
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		attempt.AuditID,
		attempt.LeadID,
		attempt.AttemptNo,
		attempt.RequestedAt,
		attempt.ResponseStatus,
		attempt.ResponseBody,
		attempt.ErrorMessage,
		attempt.Success,
		attempt.CreatedAt,
	).Scan(&attempt.ID)

	if err != nil {
		return fmt.Errorf("failed to create activity attempt: %w", err)
	}

	return nil
}

// GetAttemptsByAuditID retrieves all attempts for an audit entry
func (r *activityAttemptRepository) GetAttemptsByAuditID(ctx context.Context, auditID int64) ([]*models.ActivityAttempt, error) {
	query := `
		SELECT id, audit_id, lead_id, attempt_no, requested_at,
			response_status, response_body, error_message, success, created_at
		FROM activity_attempt
		WHERE audit_id = $1
		ORDER BY attempt_no ASC
	`

	rows, err := r.db.QueryContext(ctx, query, auditID)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*models.ActivityAttempt
	for rows.Next() {
		attempt := &models.ActivityAttempt{}
		err := rows.Scan(
			&attempt.ID,
			&attempt.AuditID,
			&attempt.LeadID,
			&attempt.AttemptNo,
			&attempt.RequestedAt,
			&attempt.ResponseStatus,
			&attempt.ResponseBody,
			&attempt.ErrorMessage,
			&attempt.Success,
			&attempt.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}

	return attempts, rows.Err()
}

// CountAttempts returns the number of attempts for an audit entry
func (r *activityAttemptRepository) CountAttempts(ctx context.Context, auditID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM activity_attempt
		WHERE audit_id = $1
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, auditID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count activity attempts: %w", err)
	}

	return count, nil
}
