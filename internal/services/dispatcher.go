package services

import (
	"context"
	"strings"
	"sync"

	"github.com/checkfox/go_reassign/internal/client"
	"github.com/checkfox/go_reassign/internal/logger"
	"github.com/checkfox/go_reassign/internal/models"
	"github.com/checkfox/go_reassign/internal/queue"
)

// DefaultRejectionReason fills in when a manager confirms a rejection
// without typing a reason. A cancelled prompt is different: it aborts the
// action entirely.
const DefaultRejectionReason = "No reason provided"

// DispatchBackend is the slice of the CRM client the dispatcher needs
type DispatchBackend interface {
	RequestReassignment(ctx context.Context, params client.RequestReassignmentParams) (*client.ReassignmentOutcome, error)
	ApproveReassignment(ctx context.Context, leadID, userID string) error
	RejectReassignment(ctx context.Context, leadID, userID, rejectionReason string) error
	UpdateLeadFields(ctx context.Context, leadID, userID string, deltas []models.FieldDelta) error
}

// AuditSink persists local audit entries for dispatched actions
type AuditSink interface {
	CreateAuditEntry(ctx context.Context, entry *models.AuditEntry) error
}

// ActivityQueue enqueues background delivery of activity-log entries
type ActivityQueue interface {
	Enqueue(ctx context.Context, jobType string, payload map[string]interface{}) error
}

// Outcome is the primary result of a dispatched action
type Outcome string

const (
	// OutcomeReassigned means ownership transferred directly, no approval needed
	OutcomeReassigned Outcome = "REASSIGNED"

	// OutcomePending means a request was recorded and awaits manager action
	OutcomePending Outcome = "PENDING_APPROVAL"

	// OutcomeApproved means a manager approved a pending request
	OutcomeApproved Outcome = "APPROVED"

	// OutcomeRejected means a manager rejected a pending request
	OutcomeRejected Outcome = "REJECTED"

	// OutcomeAborted means the action was abandoned before any call was made
	OutcomeAborted Outcome = "ABORTED"

	// OutcomeCancelled means the user abandoned the workflow and local state
	// was cleared
	OutcomeCancelled Outcome = "CANCELLED"
)

// AuxiliaryOutcome reports a best-effort side effect of a dispatch. A failed
// auxiliary never fails the primary action.
type AuxiliaryOutcome struct {
	Name string `json:"name"`
	Err  error  `json:"-"`
	OK   bool   `json:"ok"`
}

// DispatchResult separates the primary outcome of an action from its
// auxiliary side effects so callers (and tests) can assert on them
// independently.
type DispatchResult struct {
	Outcome   Outcome                   `json:"outcome"`
	Status    models.ReassignmentStatus `json:"status,omitempty"`
	Form      *models.FormSnapshot      `json:"form,omitempty"`
	Auxiliary []AuxiliaryOutcome        `json:"auxiliary,omitempty"`
}

// RequestInput holds everything needed to dispatch a request action
type RequestInput struct {
	SessionID    string
	Lead         models.LeadRecord
	Eligibility  models.EligibilityResult
	TargetUserID string
	Reason       string
	Deltas       []models.FieldDelta
	Perms        models.PermissionSet
}

// Dispatcher turns a user's action into exactly one state-changing backend
// call. Validation and permission gates run before any network traffic; a
// per-lead in-flight guard refuses duplicate submissions from rapid
// double-clicks. Failures leave local state untouched.
type Dispatcher struct {
	backend  DispatchBackend
	audit    AuditSink
	queue    ActivityQueue
	sessions *SessionStore

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewDispatcher creates a new Dispatcher instance
func NewDispatcher(backend DispatchBackend, audit AuditSink, q ActivityQueue, sessions *SessionStore) *Dispatcher {
	return &Dispatcher{
		backend:  backend,
		audit:    audit,
		queue:    q,
		sessions: sessions,
		inFlight: make(map[string]bool),
	}
}

// Request dispatches a reassignment request. Depending on the backend's
// policy the result is either a direct reassignment (ownership moves, the
// creation form is repopulated from the lead) or a pending request awaiting
// manager approval (no repopulation).
func (d *Dispatcher) Request(ctx context.Context, input RequestInput) (*DispatchResult, error) {
	lead := input.Lead
	eligibility := input.Eligibility

	if input.SessionID != "" {
		if session := d.sessions.Get(input.SessionID); session != nil {
			lead = session.Lead
			eligibility = session.Eligibility
		}
	}

	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, models.NewValidationError("reason", "a reassignment reason is required")
	}

	// Absolute guards, re-checked at dispatch time: managers bypass the
	// waiting window but never these
	if lead.CreatedBy != "" && lead.CreatedBy == input.Perms.UserID {
		return nil, models.NewPermissionError(models.ActionRequest, false, ReasonSelfReassignment)
	}
	if lead.AssignedTo.Contains(input.Perms.UserID) {
		return nil, models.NewPermissionError(models.ActionRequest, false, ReasonAlreadyAssigned)
	}
	if lead.TeamLead != "" && lead.TeamLead == input.Perms.UserID {
		return nil, models.NewPermissionError(models.ActionRequest, false, ReasonAlreadyTeamLead)
	}

	if !eligibility.CanReassign && !input.Perms.CanApproveReassignment {
		message := eligibility.Reason
		if message == "" {
			message = "lead is not yet eligible for reassignment"
		}
		return nil, models.NewPermissionError(models.ActionRequest, false, message)
	}

	if err := d.beginDispatch(lead.ID); err != nil {
		return nil, err
	}
	defer d.endDispatch(lead.ID)

	outcome, err := d.backend.RequestReassignment(ctx, client.RequestReassignmentParams{
		LeadID:       lead.ID,
		UserID:       input.Perms.UserID,
		TargetUserID: input.TargetUserID,
		Reason:       reason,
		Deltas:       input.Deltas,
	})
	if err != nil {
		return nil, err
	}

	status := outcome.Status
	if status == "" {
		if eligibility.RequiresManagerApproval {
			status = models.ReassignmentStatusRequested
		} else {
			status = models.ReassignmentStatusApproved
		}
	}

	result := &DispatchResult{Status: status}
	if status == models.ReassignmentStatusRequested {
		result.Outcome = OutcomePending
	} else {
		result.Outcome = OutcomeReassigned
		result.Form = BuildFormSnapshot(lead)
	}

	logger.LogStatusTransition(ctx, lead.ID, string(models.ReassignmentStatusNone), string(status))

	// The legacy request endpoint cannot carry field deltas; apply them in a
	// best-effort follow-up so audits stay complete on mixed backends
	if !outcome.DeltasApplied {
		err := d.backend.UpdateLeadFields(ctx, lead.ID, input.Perms.UserID, input.Deltas)
		result.Auxiliary = append(result.Auxiliary, auxiliary(ctx, "update_fields", err))
	}

	result.Auxiliary = append(result.Auxiliary, d.recordAudit(ctx, lead.ID, input.Perms.UserID, models.ActionRequest, result.Outcome, &reason, input.Deltas)...)

	if input.SessionID != "" {
		d.sessions.Clear(input.SessionID)
	}

	return result, nil
}

// Approve resolves a pending request in the requester's favour. Refused
// locally, with no network call, when the actor lacks approval rights.
func (d *Dispatcher) Approve(ctx context.Context, leadID string, perms models.PermissionSet) (*DispatchResult, error) {
	if !perms.CanApproveReassignment {
		return nil, models.NewPermissionError(models.ActionApprove, true, "approval requires reassignment-approval permission")
	}

	if err := d.beginDispatch(leadID); err != nil {
		return nil, err
	}
	defer d.endDispatch(leadID)

	if err := d.backend.ApproveReassignment(ctx, leadID, perms.UserID); err != nil {
		return nil, err
	}

	logger.LogStatusTransition(ctx, leadID, string(models.ReassignmentStatusRequested), string(models.ReassignmentStatusApproved))

	result := &DispatchResult{
		Outcome: OutcomeApproved,
		Status:  models.ReassignmentStatusApproved,
	}
	result.Auxiliary = d.recordAudit(ctx, leadID, perms.UserID, models.ActionApprove, OutcomeApproved, nil, nil)
	return result, nil
}

// Reject resolves a pending request against the requester. A nil reason
// means the prompt was cancelled: the action aborts entirely with zero
// network calls. An empty-but-confirmed reason gets a placeholder.
func (d *Dispatcher) Reject(ctx context.Context, leadID string, perms models.PermissionSet, rejectionReason *string) (*DispatchResult, error) {
	if !perms.CanApproveReassignment {
		return nil, models.NewPermissionError(models.ActionReject, true, "rejection requires reassignment-approval permission")
	}

	if rejectionReason == nil {
		logger.Info(ctx, "Reject prompt cancelled, aborting without any call", "lead_id", leadID)
		return &DispatchResult{Outcome: OutcomeAborted}, nil
	}

	reason := strings.TrimSpace(*rejectionReason)
	if reason == "" {
		reason = DefaultRejectionReason
	}

	if err := d.beginDispatch(leadID); err != nil {
		return nil, err
	}
	defer d.endDispatch(leadID)

	if err := d.backend.RejectReassignment(ctx, leadID, perms.UserID, reason); err != nil {
		return nil, err
	}

	logger.LogStatusTransition(ctx, leadID, string(models.ReassignmentStatusRequested), string(models.ReassignmentStatusRejected))

	result := &DispatchResult{
		Outcome: OutcomeRejected,
		Status:  models.ReassignmentStatusRejected,
	}
	result.Auxiliary = d.recordAudit(ctx, leadID, perms.UserID, models.ActionReject, OutcomeRejected, &reason, nil)
	return result, nil
}

// Cancel abandons the workflow without touching the backend. Locally held
// lead, eligibility, and phone state are cleared so the form returns to its
// pre-lookup state.
func (d *Dispatcher) Cancel(ctx context.Context, sessionID string) *DispatchResult {
	d.sessions.Clear(sessionID)
	logger.Info(ctx, "Reassignment workflow cancelled", "session_id", sessionID)
	return &DispatchResult{Outcome: OutcomeCancelled}
}

// recordAudit writes the local audit row and enqueues background delivery to
// the backend's activity log. Both are fire-and-forget: failures are logged
// and reported as auxiliary outcomes, never as errors on the primary action.
func (d *Dispatcher) recordAudit(ctx context.Context, leadID, actorID string, action models.ReassignmentAction, outcome Outcome, reason *string, deltas []models.FieldDelta) []AuxiliaryOutcome {
	entry := &models.AuditEntry{
		LeadID:      leadID,
		ActorID:     actorID,
		Action:      action.String(),
		Outcome:     string(outcome),
		Reason:      reason,
		FieldDeltas: models.FieldDeltaList(deltas),
	}

	if err := d.audit.CreateAuditEntry(ctx, entry); err != nil {
		return []AuxiliaryOutcome{auxiliary(ctx, "audit_entry", err)}
	}

	enqueueErr := d.queue.Enqueue(ctx, queue.JobTypeDeliverActivity, queue.NewActivityJobPayload(entry.ID, leadID))
	return []AuxiliaryOutcome{
		auxiliary(ctx, "audit_entry", nil),
		auxiliary(ctx, "activity_enqueue", enqueueErr),
	}
}

// auxiliary wraps a side-effect error into an AuxiliaryOutcome, logging
// failures on the way
func auxiliary(ctx context.Context, name string, err error) AuxiliaryOutcome {
	if err != nil {
		logger.LogError(ctx, "Auxiliary side effect failed", err, "side_effect", name)
	}
	return AuxiliaryOutcome{Name: name, Err: err, OK: err == nil}
}

// beginDispatch acquires the per-lead in-flight guard
func (d *Dispatcher) beginDispatch(leadID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inFlight[leadID] {
		return models.NewConflictError(leadID, "another action is already in flight for this lead")
	}
	d.inFlight[leadID] = true
	return nil
}

// endDispatch releases the per-lead in-flight guard
func (d *Dispatcher) endDispatch(leadID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inFlight, leadID)
}
