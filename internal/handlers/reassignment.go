package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/checkfox/go_reassign/internal/logger"
	"github.com/checkfox/go_reassign/internal/models"
	"github.com/checkfox/go_reassign/internal/services"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// ReassignmentHandler handles the action-dispatch endpoints
type ReassignmentHandler struct {
	dispatcher *services.Dispatcher
}

// NewReassignmentHandler creates a new ReassignmentHandler
func NewReassignmentHandler(dispatcher *services.Dispatcher) *ReassignmentHandler {
	return &ReassignmentHandler{
		dispatcher: dispatcher,
	}
}

// RequestBody is the payload for POST /v1/reassignments/request. Callers
// normally pass the session ID from a prior duplicate check; the inline lead
// and eligibility fields exist for sessionless callers.
type RequestBody struct {
	SessionID    string                    `json:"session_id,omitempty"`
	Lead         *models.LeadRecord        `json:"lead,omitempty"`
	Eligibility  *models.EligibilityResult `json:"eligibility,omitempty"`
	TargetUserID string                    `json:"target_user_id"`
	Reason       string                    `json:"reason"`
	FieldDeltas  []models.FieldDelta       `json:"field_deltas,omitempty"`
}

// RejectBody is the payload for POST /v1/reassignments/{leadID}/reject.
// A JSON null (or absent) rejection_reason means the prompt was cancelled.
type RejectBody struct {
	RejectionReason *string `json:"rejection_reason"`
}

// CancelBody is the payload for POST /v1/reassignments/cancel
type CancelBody struct {
	SessionID string `json:"session_id"`
}

// HandleRequest handles POST /v1/reassignments/request
func (h *ReassignmentHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx, correlationID, perms := h.actionContext(r)

	var body RequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWorkflowError(w, ctx, correlationID, models.NewValidationError("body", "malformed JSON payload"))
		return
	}
	defer r.Body.Close()

	if body.SessionID == "" && body.Lead == nil {
		respondWorkflowError(w, ctx, correlationID, models.NewValidationError("session_id", "a lookup session or an inline lead is required"))
		return
	}

	input := services.RequestInput{
		SessionID:    body.SessionID,
		TargetUserID: body.TargetUserID,
		Reason:       body.Reason,
		Deltas:       body.FieldDeltas,
		Perms:        perms,
	}
	if body.Lead != nil {
		input.Lead = *body.Lead
	}
	if body.Eligibility != nil {
		input.Eligibility = *body.Eligibility
	}

	logger.Info(ctx, "Reassignment request dispatched", "target_user_id", body.TargetUserID)

	result, err := h.dispatcher.Request(ctx, input)
	if err != nil {
		respondWorkflowError(w, ctx, correlationID, err)
		return
	}

	respondJSON(w, ctx, http.StatusOK, correlationID, result)
}

// HandleApprove handles POST /v1/reassignments/{leadID}/approve
func (h *ReassignmentHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx, correlationID, perms := h.actionContext(r)
	leadID := mux.Vars(r)["leadID"]
	ctx = context.WithValue(ctx, logger.LeadIDKey, leadID)

	logger.Info(ctx, "Approve dispatched")

	result, err := h.dispatcher.Approve(ctx, leadID, perms)
	if err != nil {
		respondWorkflowError(w, ctx, correlationID, err)
		return
	}

	respondJSON(w, ctx, http.StatusOK, correlationID, result)
}

// HandleReject handles POST /v1/reassignments/{leadID}/reject
func (h *ReassignmentHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx, correlationID, perms := h.actionContext(r)
	leadID := mux.Vars(r)["leadID"]
	ctx = context.WithValue(ctx, logger.LeadIDKey, leadID)

	var body RejectBody
	if r.Body != nil {
		// An empty body reads the same as a cancelled prompt
		_ = json.NewDecoder(r.Body).Decode(&body)
		defer r.Body.Close()
	}

	logger.Info(ctx, "Reject dispatched", "prompt_cancelled", body.RejectionReason == nil)

	result, err := h.dispatcher.Reject(ctx, leadID, perms, body.RejectionReason)
	if err != nil {
		respondWorkflowError(w, ctx, correlationID, err)
		return
	}

	respondJSON(w, ctx, http.StatusOK, correlationID, result)
}

// HandleCancel handles POST /v1/reassignments/cancel
func (h *ReassignmentHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx, correlationID, _ := h.actionContext(r)

	var body CancelBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWorkflowError(w, ctx, correlationID, models.NewValidationError("body", "malformed JSON payload"))
		return
	}
	defer r.Body.Close()

	if body.SessionID == "" {
		respondWorkflowError(w, ctx, correlationID, models.NewValidationError("session_id", "session_id is required"))
		return
	}

	result := h.dispatcher.Cancel(ctx, body.SessionID)
	respondJSON(w, ctx, http.StatusOK, correlationID, result)
}

// actionContext builds the per-action context: correlation ID, permission
// snapshot, logging fields
func (h *ReassignmentHandler) actionContext(r *http.Request) (context.Context, string, models.PermissionSet) {
	correlationID := uuid.New().String()
	ctx := context.WithValue(r.Context(), logger.CorrelationIDKey, correlationID)

	perms := permissionsFromRequest(r)
	ctx = context.WithValue(ctx, logger.ActorIDKey, perms.UserID)

	return ctx, correlationID, perms
}
