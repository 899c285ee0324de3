package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/checkfox/go_reassign/internal/logger"
	"github.com/checkfox/go_reassign/internal/models"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, ctx context.Context, status int, correlationID string, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if correlationID != "" {
		w.Header().Set("X-Correlation-ID", correlationID)
	}
	w.WriteHeader(status)

	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.LogError(ctx, "Failed to encode response", err)
	}
}

// respondWorkflowError maps the workflow error taxonomy onto HTTP status
// codes. Backend transport failures surface as 502 with the verbatim detail.
func respondWorkflowError(w http.ResponseWriter, ctx context.Context, correlationID string, err error) {
	status := http.StatusInternalServerError

	var validationErr *models.ValidationError
	var permissionErr *models.PermissionError
	var notFoundErr *models.NotFoundError
	var conflictErr *models.ConflictError
	var transportErr *models.TransportError

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.As(err, &permissionErr):
		status = http.StatusForbidden
	case errors.As(err, &notFoundErr):
		status = http.StatusNotFound
	case errors.As(err, &conflictErr):
		status = http.StatusConflict
	case errors.As(err, &transportErr):
		status = http.StatusBadGateway
	}

	logger.Warn(ctx, "Request failed", "status", status, "error", err.Error())
	respondJSON(w, ctx, status, correlationID, ErrorResponse{
		Error:         err.Error(),
		CorrelationID: correlationID,
	})
}

// permissionsFromRequest builds the caller's permission snapshot from the
// request. Permissions arrive as headers set by the authenticating front
// door; they are read fresh per request and never cached here.
func permissionsFromRequest(r *http.Request) models.PermissionSet {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		userID = r.URL.Query().Get("user_id")
	}

	return models.PermissionSet{
		UserID:                    userID,
		CanApproveReassignment:    parseBoolHeader(r, "X-Can-Approve-Reassignment"),
		CanViewReassignmentDetail: parseBoolHeader(r, "X-Can-View-Reassignment-Detail"),
		CanCreateLead:             parseBoolHeader(r, "X-Can-Create-Lead"),
	}
}

func parseBoolHeader(r *http.Request, name string) bool {
	v := r.Header.Get(name)
	return v == "true" || v == "1" || v == "yes"
}
