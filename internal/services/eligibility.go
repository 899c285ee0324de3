package services

import (
	"fmt"
	"time"

	"github.com/checkfox/go_reassign/internal/client"
	"github.com/checkfox/go_reassign/internal/models"
)

// Ineligibility reasons surfaced to the caller. The self-reassignment and
// already-assigned guards are absolute: no waiting window or permission
// overrides them.
const (
	ReasonSelfReassignment       = "cannot reassign your own lead to yourself"
	ReasonAlreadyAssigned        = "lead is already assigned to you"
	ReasonAlreadyTeamLead        = "you are already the team lead for this lead"
	ReasonPendingRequest         = "a reassignment request is already pending on this lead"
	ReasonEligibilityUnavailable = "eligibility data unavailable, reassignment cannot be evaluated"
)

// Calculator evaluates reassignment eligibility for a found lead. It is a
// pure function of its inputs: the caller supplies the single `now` used for
// every derived figure, so days elapsed, days remaining, and the available-on
// date can never disagree within one evaluation.
type Calculator struct{}

// NewCalculator creates a new Calculator instance
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Evaluate computes the eligibility result and panel routing for a lead.
// enrichment may be nil when the eligibility endpoint was unreachable; the
// result then denies reassignment with an explanatory reason but still
// carries the elapsed-days figure for display.
func (c *Calculator) Evaluate(lead models.LeadRecord, enrichment *client.EligibilityResponse, perms models.PermissionSet, now time.Time) models.EligibilityResult {
	base := lead.AgeBase()

	result := models.EligibilityResult{
		DaysElapsed: daysBetween(base, now),
	}

	if enrichment != nil {
		result.ReassignmentPeriod = enrichment.ReassignmentPeriod
		result.RequiresManagerApproval = enrichment.ManagerPermissionRequired
		serverRemaining := enrichment.DaysRemaining
		result.ServerDaysRemaining = &serverRemaining
	}

	result.DaysRemaining = result.ReassignmentPeriod - result.DaysElapsed
	if result.DaysRemaining < 0 {
		result.DaysRemaining = 0
	}
	result.AvailableOn = base.AddDate(0, 0, result.ReassignmentPeriod)

	// Absolute guards, evaluated before any window logic
	switch {
	case lead.CreatedBy != "" && lead.CreatedBy == perms.UserID:
		result.Reason = ReasonSelfReassignment

	case lead.AssignedTo.Contains(perms.UserID):
		result.Reason = ReasonAlreadyAssigned

	case lead.TeamLead != "" && lead.TeamLead == perms.UserID:
		result.Reason = ReasonAlreadyTeamLead

	case enrichment == nil:
		result.Reason = ReasonEligibilityUnavailable

	case lead.ReassignmentStatus == models.ReassignmentStatusRequested:
		result.Reason = ReasonPendingRequest

	case result.DaysRemaining > 0:
		result.Reason = fmt.Sprintf("waiting period active, reassignment available in %d day(s)", result.DaysRemaining)

	default:
		result.CanReassign = true
	}

	result.Panel = c.routePanel(result, perms)
	return result
}

// routePanel decides which surface the caller sees. Managers always get the
// action panel (the waiting-window display gate does not apply to them), but
// the absolute guards above still hold in the result itself.
func (c *Calculator) routePanel(result models.EligibilityResult, perms models.PermissionSet) models.Panel {
	if !perms.CanViewReassignmentDetail {
		return models.PanelMinimal
	}
	if perms.CanApproveReassignment {
		return models.PanelAction
	}
	if result.CanReassign {
		return models.PanelRequest
	}
	return models.PanelReadOnly
}

// daysBetween returns whole days from base to now, floored, never negative
func daysBetween(base, now time.Time) int {
	if now.Before(base) {
		return 0
	}
	return int(now.Sub(base).Hours() / 24)
}
