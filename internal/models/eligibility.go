package models

import "time"

// Panel identifies which UI surface the caller should be routed to after a
// duplicate lookup finds an existing lead.
type Panel string

const (
	// PanelMinimal shows only a "lead exists, assigned to X" notice; the
	// caller lacks permission to see eligibility internals
	PanelMinimal Panel = "MINIMAL"

	// PanelAction shows the full reassignment action panel (managers)
	PanelAction Panel = "ACTION"

	// PanelRequest shows the reassignment request panel (eligible requesters)
	PanelRequest Panel = "REQUEST"

	// PanelReadOnly shows lead details with the ineligibility reason and
	// remaining wait, no action available
	PanelReadOnly Panel = "READ_ONLY"
)

// EligibilityResult is the computed outcome of evaluating a found lead
// against the caller's permissions and the configured waiting window.
// It is never persisted.
type EligibilityResult struct {
	CanReassign             bool      `json:"can_reassign"`
	Reason                  string    `json:"reason,omitempty"`
	DaysElapsed             int       `json:"days_elapsed"`
	DaysRemaining           int       `json:"days_remaining"`
	ReassignmentPeriod      int       `json:"reassignment_period"`
	RequiresManagerApproval bool      `json:"requires_manager_approval"`
	AvailableOn             time.Time `json:"available_on"`
	Panel                   Panel     `json:"panel"`

	// ServerDaysRemaining carries the backend's own countdown when the
	// enrichment call succeeded. Kept for display parity only; the
	// client-side recomputation above is authoritative for the decision.
	ServerDaysRemaining *int `json:"server_days_remaining,omitempty"`
}
