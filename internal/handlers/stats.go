package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/checkfox/go_reassign/internal/logger"
	"github.com/checkfox/go_reassign/internal/models"
	"github.com/checkfox/go_reassign/internal/repository"
	"github.com/gorilla/mux"
)

// StatsHandler handles observability endpoints over the local audit store
type StatsHandler struct {
	auditRepo   repository.AuditRepository
	attemptRepo repository.ActivityAttemptRepository
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(auditRepo repository.AuditRepository, attemptRepo repository.ActivityAttemptRepository) *StatsHandler {
	return &StatsHandler{
		auditRepo:   auditRepo,
		attemptRepo: attemptRepo,
	}
}

// AuditCountsResponse represents audit entry counts grouped by action
type AuditCountsResponse struct {
	Requests   int `json:"requests"`
	Approvals  int `json:"approvals"`
	Rejections int `json:"rejections"`
	Total      int `json:"total"`
}

// AuditEntrySummary represents a summary of a recent audit entry
type AuditEntrySummary struct {
	ID        int64  `json:"id"`
	LeadID    string `json:"lead_id"`
	ActorID   string `json:"actor_id"`
	Action    string `json:"action"`
	Outcome   string `json:"outcome"`
	Delivered bool   `json:"delivered"`
	CreatedAt string `json:"created_at"`
}

// LeadActivityResponse represents the full local activity history of a lead
type LeadActivityResponse struct {
	LeadID  string              `json:"lead_id"`
	Entries []LeadActivityEntry `json:"entries"`
}

// LeadActivityEntry is one audit entry with its delivery attempts
type LeadActivityEntry struct {
	ID          int64                    `json:"id"`
	ActorID     string                   `json:"actor_id"`
	Action      string                   `json:"action"`
	Outcome     string                   `json:"outcome"`
	Reason      *string                  `json:"reason,omitempty"`
	FieldDeltas []models.FieldDelta      `json:"field_deltas,omitempty"`
	Delivered   bool                     `json:"delivered"`
	CreatedAt   string                   `json:"created_at"`
	Attempts    []ActivityAttemptSummary `json:"attempts"`
}

// ActivityAttemptSummary represents a summary of a delivery attempt
type ActivityAttemptSummary struct {
	AttemptNo    int     `json:"attempt_no"`
	AttemptedAt  string  `json:"attempted_at"`
	Success      bool    `json:"success"`
	StatusCode   *int    `json:"status_code,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`
}

// HandleAuditCounts handles GET /v1/stats/audit/counts
func (h *StatsHandler) HandleAuditCounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := h.auditRepo.GetCountsByAction(ctx)
	if err != nil {
		logger.LogError(ctx, "Failed to get audit counts", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	total := 0
	for _, count := range counts {
		total += count
	}

	respondJSON(w, ctx, http.StatusOK, "", AuditCountsResponse{
		Requests:   counts[models.ActionRequest.String()],
		Approvals:  counts[models.ActionApprove.String()],
		Rejections: counts[models.ActionReject.String()],
		Total:      total,
	})
}

// HandleRecentAudit handles GET /v1/stats/audit/recent
func (h *StatsHandler) HandleRecentAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	entries, err := h.auditRepo.GetRecentEntries(ctx, limit)
	if err != nil {
		logger.LogError(ctx, "Failed to get recent audit entries", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	summaries := make([]AuditEntrySummary, 0, len(entries))
	for _, entry := range entries {
		summaries = append(summaries, AuditEntrySummary{
			ID:        entry.ID,
			LeadID:    entry.LeadID,
			ActorID:   entry.ActorID,
			Action:    entry.Action,
			Outcome:   entry.Outcome,
			Delivered: entry.Delivered,
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		})
	}

	respondJSON(w, ctx, http.StatusOK, "", summaries)
}

// HandleLeadActivity handles GET /v1/leads/{leadID}/activity
func (h *StatsHandler) HandleLeadActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	leadID := mux.Vars(r)["leadID"]

	entries, err := h.auditRepo.GetEntriesByLeadID(ctx, leadID)
	if err != nil {
		logger.LogError(ctx, "Failed to get lead activity", err, "lead_id", leadID)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	response := LeadActivityResponse{
		LeadID:  leadID,
		Entries: make([]LeadActivityEntry, 0, len(entries)),
	}

	for _, entry := range entries {
		activityEntry := LeadActivityEntry{
			ID:          entry.ID,
			ActorID:     entry.ActorID,
			Action:      entry.Action,
			Outcome:     entry.Outcome,
			Reason:      entry.Reason,
			FieldDeltas: entry.FieldDeltas,
			Delivered:   entry.Delivered,
			CreatedAt:   entry.CreatedAt.Format(time.RFC3339),
		}

		attempts, err := h.attemptRepo.GetAttemptsByAuditID(ctx, entry.ID)
		if err != nil {
			logger.LogError(ctx, "Failed to get delivery attempts", err, "audit_id", entry.ID)
		}
		for _, attempt := range attempts {
			activityEntry.Attempts = append(activityEntry.Attempts, ActivityAttemptSummary{
				AttemptNo:    attempt.AttemptNo,
				AttemptedAt:  attempt.RequestedAt.Format(time.RFC3339),
				Success:      attempt.Success,
				StatusCode:   attempt.ResponseStatus,
				ErrorMessage: attempt.ErrorMessage,
			})
		}

		response.Entries = append(response.Entries, activityEntry)
	}

	respondJSON(w, ctx, http.StatusOK, "", response)
}
