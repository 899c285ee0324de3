package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/checkfox/go_reassign/internal/logger"
	"github.com/checkfox/go_reassign/internal/models"
	"github.com/checkfox/go_reassign/internal/services"
	"github.com/google/uuid"
)

// LookupHandler handles duplicate-check requests
type LookupHandler struct {
	lookup     *services.DuplicateLookup
	calculator *services.Calculator
	sessions   *services.SessionStore
}

// NewLookupHandler creates a new LookupHandler
func NewLookupHandler(lookup *services.DuplicateLookup, calculator *services.Calculator, sessions *services.SessionStore) *LookupHandler {
	return &LookupHandler{
		lookup:     lookup,
		calculator: calculator,
		sessions:   sessions,
	}
}

// DuplicateCheckResponse is returned for a duplicate lookup. The detail
// fields are withheld when the caller may not see eligibility internals.
type DuplicateCheckResponse struct {
	Found          bool                      `json:"found"`
	SessionID      string                    `json:"session_id,omitempty"`
	MatchedVia     services.MatchedVia       `json:"matched_via,omitempty"`
	Panel          models.Panel              `json:"panel,omitempty"`
	AssignedToName string                    `json:"assigned_to_name,omitempty"`
	Notice         string                    `json:"notice,omitempty"`
	Lead           *models.LeadRecord        `json:"lead,omitempty"`
	Eligibility    *models.EligibilityResult `json:"eligibility,omitempty"`
}

// HandleDuplicateCheck handles GET /v1/leads/duplicate-check
func (h *LookupHandler) HandleDuplicateCheck(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	correlationID := uuid.New().String()
	ctx := context.WithValue(r.Context(), logger.CorrelationIDKey, correlationID)

	perms := permissionsFromRequest(r)
	ctx = context.WithValue(ctx, logger.ActorIDKey, perms.UserID)

	query := r.URL.Query()
	params := services.LookupParams{
		Phone:          query.Get("phone"),
		AlternatePhone: query.Get("alternate_phone"),
		LoanTypeName:   query.Get("loan_type_name"),
		UserID:         perms.UserID,
	}

	logger.Info(ctx, "Duplicate check requested", "loan_type_name", params.LoanTypeName)

	if perms.UserID == "" {
		respondWorkflowError(w, ctx, correlationID, models.NewValidationError("user_id", "caller identity is required"))
		return
	}

	match, err := h.lookup.Find(ctx, params)
	if err != nil {
		respondWorkflowError(w, ctx, correlationID, err)
		return
	}

	if match == nil {
		logger.Info(ctx, "No duplicate found, caller may create the lead")
		respondJSON(w, ctx, http.StatusOK, correlationID, DuplicateCheckResponse{Found: false})
		return
	}

	ctx = context.WithValue(ctx, logger.LeadIDKey, match.Lead.ID)

	// One clock for the whole evaluation so displayed figures cannot disagree
	now := time.Now()
	eligibility := h.calculator.Evaluate(match.Lead, match.Enrichment, perms, now)

	sessionID := uuid.New().String()
	h.sessions.Put(sessionID, &services.LookupSession{
		Phone:       match.MatchedPhone,
		Lead:        match.Lead,
		Eligibility: eligibility,
	})

	logger.Info(ctx, "Duplicate found",
		"matched_via", string(match.MatchedVia),
		"panel", string(eligibility.Panel),
		"can_reassign", eligibility.CanReassign,
	)

	response := DuplicateCheckResponse{
		Found:      true,
		SessionID:  sessionID,
		MatchedVia: match.MatchedVia,
		Panel:      eligibility.Panel,
	}

	if eligibility.Panel == models.PanelMinimal {
		response.AssignedToName = match.Lead.AssignedToName
		response.Notice = "a lead already exists for this number"
	} else {
		lead := match.Lead
		response.Lead = &lead
		response.Eligibility = &eligibility
	}

	respondJSON(w, ctx, http.StatusOK, correlationID, response)
	logger.LogSlowOperation(ctx, "duplicate_check", time.Since(startTime))
}
