package models

// ReassignmentStatus represents the current state of a lead's reassignment workflow
type ReassignmentStatus string

const (
	// ReassignmentStatusNone indicates no reassignment activity on the lead
	ReassignmentStatusNone ReassignmentStatus = "NONE"

	// ReassignmentStatusRequested indicates a reassignment request is pending manager action
	ReassignmentStatusRequested ReassignmentStatus = "REQUESTED"

	// ReassignmentStatusApproved indicates the reassignment took effect and ownership transferred
	ReassignmentStatusApproved ReassignmentStatus = "APPROVED"

	// ReassignmentStatusRejected indicates a manager rejected the pending request
	ReassignmentStatusRejected ReassignmentStatus = "REJECTED"
)

// IsValid checks if the status is a valid ReassignmentStatus value
func (s ReassignmentStatus) IsValid() bool {
	switch s {
	case ReassignmentStatusNone, ReassignmentStatusRequested,
		ReassignmentStatusApproved, ReassignmentStatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if the status represents a resolved reassignment
func (s ReassignmentStatus) IsTerminal() bool {
	return s == ReassignmentStatusApproved || s == ReassignmentStatusRejected
}

// CanTransitionTo checks if the reassignment can move from its current status
// to the target status
func (s ReassignmentStatus) CanTransitionTo(target ReassignmentStatus) bool {
	if s.IsTerminal() {
		return false
	}

	switch s {
	case ReassignmentStatusNone, "":
		// A fresh lead can be requested, or approved directly when the
		// waiting window has elapsed and no manager sign-off is needed
		return target == ReassignmentStatusRequested || target == ReassignmentStatusApproved

	case ReassignmentStatusRequested:
		// A pending request is resolved by a manager either way
		return target == ReassignmentStatusApproved || target == ReassignmentStatusRejected

	default:
		return false
	}
}

// ReassignmentAction identifies a user-initiated dispatch on the workflow
type ReassignmentAction string

const (
	// ActionRequest asks for (or directly performs) a reassignment
	ActionRequest ReassignmentAction = "REQUEST"

	// ActionApprove resolves a pending request in favour of the requester
	ActionApprove ReassignmentAction = "APPROVE"

	// ActionReject resolves a pending request against the requester
	ActionReject ReassignmentAction = "REJECT"

	// ActionCancel abandons the local workflow without touching the backend
	ActionCancel ReassignmentAction = "CANCEL"
)

// String returns the string representation of the action
func (a ReassignmentAction) String() string {
	return string(a)
}
