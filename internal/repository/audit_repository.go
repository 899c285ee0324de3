package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/checkfox/go_reassign/internal/models"
)

// AuditRepository defines the interface for reassignment audit persistence
type AuditRepository interface {
	// CreateAuditEntry creates a new audit entry record
	CreateAuditEntry(ctx context.Context, entry *models.AuditEntry) error

	// GetAuditEntryByID retrieves an audit entry by its ID
	GetAuditEntryByID(ctx context.Context, id int64) (*models.AuditEntry, error)

	// MarkDelivered flags an entry as delivered to the backend activity log
	MarkDelivered(ctx context.Context, id int64) error

	// GetEntriesByLeadID retrieves all audit entries for a lead, newest first
	GetEntriesByLeadID(ctx context.Context, leadID string) ([]*models.AuditEntry, error)

	// GetRecentEntries returns the most recent audit entries
	GetRecentEntries(ctx context.Context, limit int) ([]*models.AuditEntry, error)

	// GetCountsByAction returns entry counts grouped by action
	GetCountsByAction(ctx context.Context) (map[string]int, error)
}

// auditRepository is the concrete implementation of AuditRepository
type auditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new AuditRepository instance
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{
		db: db,
	}
}

// CreateAuditEntry creates a new audit entry record
func (r *auditRepository) CreateAuditEntry(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO reassignment_audit (
			lead_id, actor_id, action, outcome, reason,
			field_deltas, delivered, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		entry.LeadID,
		entry.ActorID,
		entry.Action,
		entry.Outcome,
		entry.Reason,
		entry.FieldDeltas,
		entry.Delivered,
		entry.CreatedAt,
	).Scan(&entry.ID)

	if err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}

	return nil
}

// GetAuditEntryByID retrieves an audit entry by its ID
func (r *auditRepository) GetAuditEntryByID(ctx context.Context, id int64) (*models.AuditEntry, error) {
	query := `
		SELECT id, lead_id, actor_id, action, outcome, reason,
			field_deltas, delivered, created_at
		FROM reassignment_audit
		WHERE id = $1
	`

	entry := &models.AuditEntry{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&entry.ID,
		&entry.LeadID,
		&entry.ActorID,
		&entry.Action,
		&entry.Outcome,
		&entry.Reason,
		&entry.FieldDeltas,
		&entry.Delivered,
		&entry.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("audit entry not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit entry: %w", err)
	}

	return entry, nil
}

// MarkDelivered flags an entry as delivered to the backend activity log
func (r *auditRepository) MarkDelivered(ctx context.Context, id int64) error {
	query := `
		UPDATE reassignment_audit
		SET delivered = TRUE
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark audit entry delivered: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("audit entry not found: %d", id)
	}

	return nil
}

// GetEntriesByLeadID retrieves all audit entries for a lead, newest first
func (r *auditRepository) GetEntriesByLeadID(ctx context.Context, leadID string) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, lead_id, actor_id, action, outcome, reason,
			field_deltas, delivered, created_at
		FROM reassignment_audit
		WHERE lead_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit entries: %w", err)
	}
	defer rows.Close()

	return scanAuditEntries(rows)
}

// GetRecentEntries returns the most recent audit entries
func (r *auditRepository) GetRecentEntries(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, lead_id, actor_id, action, outcome, reason,
			field_deltas, delivered, created_at
		FROM reassignment_audit
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent audit entries: %w", err)
	}
	defer rows.Close()

	return scanAuditEntries(rows)
}

// GetCountsByAction returns entry counts grouped by action
func (r *auditRepository) GetCountsByAction(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT action, COUNT(*)
		FROM reassignment_audit
		GROUP BY action
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, fmt.Errorf("failed to scan audit count: %w", err)
		}
		counts[action] = count
	}

	return counts, rows.Err()
}

// scanAuditEntries reads audit entry rows into models
func scanAuditEntries(rows *sql.Rows) ([]*models.AuditEntry, error) {
	var entries []*models.AuditEntry

	for rows.Next() {
		entry := &models.AuditEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.LeadID,
			&entry.ActorID,
			&entry.Action,
			&entry.Outcome,
			&entry.Reason,
			&entry.FieldDeltas,
			&entry.Delivered,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
