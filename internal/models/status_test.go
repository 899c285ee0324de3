package models

import "testing"

func TestReassignmentStatus_IsValid(t *testing.T) {
	valid := []ReassignmentStatus{
		ReassignmentStatusNone,
		ReassignmentStatusRequested,
		ReassignmentStatusApproved,
		ReassignmentStatusRejected,
	}

	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("Expected %s to be valid", s)
		}
	}

	if ReassignmentStatus("PENDING").IsValid() {
		t.Error("Expected PENDING to be invalid")
	}
	if ReassignmentStatus("").IsValid() {
		t.Error("Expected empty status to be invalid")
	}
}

func TestReassignmentStatus_IsTerminal(t *testing.T) {
	if ReassignmentStatusNone.IsTerminal() {
		t.Error("NONE should not be terminal")
	}
	if ReassignmentStatusRequested.IsTerminal() {
		t.Error("REQUESTED should not be terminal")
	}
	if !ReassignmentStatusApproved.IsTerminal() {
		t.Error("APPROVED should be terminal")
	}
	if !ReassignmentStatusRejected.IsTerminal() {
		t.Error("REJECTED should be terminal")
	}
}

func TestReassignmentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    ReassignmentStatus
		to      ReassignmentStatus
		allowed bool
	}{
		{ReassignmentStatusNone, ReassignmentStatusRequested, true},
		{ReassignmentStatusNone, ReassignmentStatusApproved, true},
		{ReassignmentStatusNone, ReassignmentStatusRejected, false},
		{ReassignmentStatusRequested, ReassignmentStatusApproved, true},
		{ReassignmentStatusRequested, ReassignmentStatusRejected, true},
		{ReassignmentStatusRequested, ReassignmentStatusNone, false},
		{ReassignmentStatusApproved, ReassignmentStatusRequested, false},
		{ReassignmentStatusApproved, ReassignmentStatusRejected, false},
		{ReassignmentStatusRejected, ReassignmentStatusApproved, false},
		{ReassignmentStatusRejected, ReassignmentStatusRequested, false},
	}

	for _, tt := range tests {
		got := tt.from.CanTransitionTo(tt.to)
		if got != tt.allowed {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, expected %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

// Leads that predate the reassignment workflow carry no status at all; they
// behave like NONE.
func TestReassignmentStatus_CanTransitionTo_EmptyStatus(t *testing.T) {
	empty := ReassignmentStatus("")

	if !empty.CanTransitionTo(ReassignmentStatusRequested) {
		t.Error("Expected empty status to allow transition to REQUESTED")
	}
	if !empty.CanTransitionTo(ReassignmentStatusApproved) {
		t.Error("Expected empty status to allow transition to APPROVED")
	}
	if empty.CanTransitionTo(ReassignmentStatusRejected) {
		t.Error("Expected empty status to refuse transition to REJECTED")
	}
}
