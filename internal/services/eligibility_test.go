package services

import (
	"testing"
	"time"

	"github.com/checkfox/go_reassign/internal/client"
	"github.com/checkfox/go_reassign/internal/models"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func leadCreatedDaysAgo(days int) models.LeadRecord {
	return models.LeadRecord{
		ID:        "lead-1",
		Phone:     "9876543210",
		CreatedAt: testNow.AddDate(0, 0, -days),
		CreatedBy: "creator-1",
	}
}

func enrichmentWithPeriod(period int) *client.EligibilityResponse {
	return &client.EligibilityResponse{
		ReassignmentPeriod: period,
		DaysRemaining:      period,
	}
}

func detailPerms(userID string) models.PermissionSet {
	return models.PermissionSet{
		UserID:                    userID,
		CanViewReassignmentDetail: true,
	}
}

func TestEvaluate_SelfReassignmentGuard(t *testing.T) {
	calculator := NewCalculator()
	lead := leadCreatedDaysAgo(100)

	result := calculator.Evaluate(lead, enrichmentWithPeriod(30), detailPerms("creator-1"), testNow)

	if result.CanReassign {
		t.Error("Expected self-reassignment to be denied")
	}
	if result.Reason != ReasonSelfReassignment {
		t.Errorf("Expected reason %q, got %q", ReasonSelfReassignment, result.Reason)
	}
}

func TestEvaluate_AlreadyAssignedGuard(t *testing.T) {
	calculator := NewCalculator()
	lead := leadCreatedDaysAgo(100)
	lead.AssignedTo = models.UserIDList{"user-7"}

	result := calculator.Evaluate(lead, enrichmentWithPeriod(30), detailPerms("user-7"), testNow)

	if result.CanReassign {
		t.Error("Expected already-assigned lead to be denied")
	}
	if result.Reason != ReasonAlreadyAssigned {
		t.Errorf("Expected reason %q, got %q", ReasonAlreadyAssigned, result.Reason)
	}
}

func TestEvaluate_TeamLeadGuard(t *testing.T) {
	calculator := NewCalculator()
	lead := leadCreatedDaysAgo(100)
	lead.TeamLead = "user-7"

	result := calculator.Evaluate(lead, enrichmentWithPeriod(30), detailPerms("user-7"), testNow)

	if result.CanReassign {
		t.Error("Expected team lead to be denied")
	}
	if result.Reason != ReasonAlreadyTeamLead {
		t.Errorf("Expected reason %q, got %q", ReasonAlreadyTeamLead, result.Reason)
	}
}

// The guards hold even for users who could otherwise approve reassignments.
func TestEvaluate_GuardsBeatManagerPermission(t *testing.T) {
	calculator := NewCalculator()
	lead := leadCreatedDaysAgo(100)

	perms := detailPerms("creator-1")
	perms.CanApproveReassignment = true

	result := calculator.Evaluate(lead, enrichmentWithPeriod(30), perms, testNow)

	if result.CanReassign {
		t.Error("Expected guard to hold for manager")
	}
	if result.Reason != ReasonSelfReassignment {
		t.Errorf("Expected reason %q, got %q", ReasonSelfReassignment, result.Reason)
	}
}

func TestEvaluate_MissingEnrichment(t *testing.T) {
	calculator := NewCalculator()
	lead := leadCreatedDaysAgo(10)

	result := calculator.Evaluate(lead, nil, detailPerms("user-7"), testNow)

	if result.CanReassign {
		t.Error("Expected denial when eligibility data is unavailable")
	}
	if result.Reason != ReasonEligibilityUnavailable {
		t.Errorf("Expected reason %q, got %q", ReasonEligibilityUnavailable, result.Reason)
	}
	if result.DaysElapsed != 10 {
		t.Errorf("Expected elapsed days still computed, got %d", result.DaysElapsed)
	}
	if result.ServerDaysRemaining != nil {
		t.Error("Expected no server figure without enrichment")
	}
}

func TestEvaluate_PendingRequest(t *testing.T) {
	calculator := NewCalculator()
	lead := leadCreatedDaysAgo(100)
	lead.ReassignmentStatus = models.ReassignmentStatusRequested

	result := calculator.Evaluate(lead, enrichmentWithPeriod(30), detailPerms("user-7"), testNow)

	if result.CanReassign {
		t.Error("Expected pending request to block a new one")
	}
	if result.Reason != ReasonPendingRequest {
		t.Errorf("Expected reason %q, got %q", ReasonPendingRequest, result.Reason)
	}
}

func TestEvaluate_WaitingWindowActive(t *testing.T) {
	calculator := NewCalculator()
	lead := leadCreatedDaysAgo(10)

	result := calculator.Evaluate(lead, enrichmentWithPeriod(30), detailPerms("user-7"), testNow)

	if result.CanReassign {
		t.Error("Expected denial inside the waiting window")
	}
	if result.DaysElapsed != 10 {
		t.Errorf("Expected 10 days elapsed, got %d", result.DaysElapsed)
	}
	if result.DaysRemaining != 20 {
		t.Errorf("Expected 20 days remaining, got %d", result.DaysRemaining)
	}

	expectedAvailable := lead.CreatedAt.AddDate(0, 0, 30)
	if !result.AvailableOn.Equal(expectedAvailable) {
		t.Errorf("Expected available on %v, got %v", expectedAvailable, result.AvailableOn)
	}
}

func TestEvaluate_WindowElapsed(t *testing.T) {
	calculator := NewCalculator()
	lead := leadCreatedDaysAgo(31)

	result := calculator.Evaluate(lead, enrichmentWithPeriod(30), detailPerms("user-7"), testNow)

	if !result.CanReassign {
		t.Errorf("Expected eligibility after the window, reason: %s", result.Reason)
	}
	if result.DaysRemaining != 0 {
		t.Errorf("Expected 0 days remaining, got %d", result.DaysRemaining)
	}
}

// A stale server figure does not override the local recomputation; it is
// carried alongside for display parity.
func TestEvaluate_ServerFigureCarriedNotTrusted(t *testing.T) {
	calculator := NewCalculator()
	lead := leadCreatedDaysAgo(31)

	enrichment := enrichmentWithPeriod(30)
	enrichment.DaysRemaining = 5 // stale

	result := calculator.Evaluate(lead, enrichment, detailPerms("user-7"), testNow)

	if !result.CanReassign {
		t.Errorf("Expected local recomputation to win, reason: %s", result.Reason)
	}
	if result.ServerDaysRemaining == nil || *result.ServerDaysRemaining != 5 {
		t.Errorf("Expected server figure 5 carried, got %v", result.ServerDaysRemaining)
	}
}

func TestEvaluate_AgeBaseFromLoginSentDate(t *testing.T) {
	calculator := NewCalculator()

	sent := testNow.AddDate(0, 0, -5)
	lead := leadCreatedDaysAgo(100)
	lead.FileSentToLogin = true
	lead.LoginDepartmentSentDate = &sent

	result := calculator.Evaluate(lead, enrichmentWithPeriod(30), detailPerms("user-7"), testNow)

	if result.DaysElapsed != 5 {
		t.Errorf("Expected age measured from sent date (5 days), got %d", result.DaysElapsed)
	}
	if result.CanReassign {
		t.Error("Expected waiting window restarted from sent date")
	}
}

func TestEvaluate_PanelRouting(t *testing.T) {
	calculator := NewCalculator()

	tests := []struct {
		name     string
		daysAgo  int
		perms    models.PermissionSet
		expected models.Panel
	}{
		{
			name:     "no detail permission",
			daysAgo:  100,
			perms:    models.PermissionSet{UserID: "user-7"},
			expected: models.PanelMinimal,
		},
		{
			name:    "manager",
			daysAgo: 1,
			perms: models.PermissionSet{
				UserID:                    "user-7",
				CanViewReassignmentDetail: true,
				CanApproveReassignment:    true,
			},
			expected: models.PanelAction,
		},
		{
			name:     "eligible requester",
			daysAgo:  100,
			perms:    detailPerms("user-7"),
			expected: models.PanelRequest,
		},
		{
			name:     "waiting requester",
			daysAgo:  1,
			perms:    detailPerms("user-7"),
			expected: models.PanelReadOnly,
		},
	}

	for _, tt := range tests {
		lead := leadCreatedDaysAgo(tt.daysAgo)
		result := calculator.Evaluate(lead, enrichmentWithPeriod(30), tt.perms, testNow)
		if result.Panel != tt.expected {
			t.Errorf("%s: expected panel %s, got %s", tt.name, tt.expected, result.Panel)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		now      time.Time
		expected int
	}{
		{base, 0},
		{base.Add(23 * time.Hour), 0},
		{base.Add(24 * time.Hour), 1},
		{base.Add(36 * time.Hour), 1},
		{base.AddDate(0, 0, 30), 30},
		{base.Add(-48 * time.Hour), 0}, // clock skew never goes negative
	}

	for _, tt := range tests {
		if got := daysBetween(base, tt.now); got != tt.expected {
			t.Errorf("daysBetween(base, %v) = %d, expected %d", tt.now, got, tt.expected)
		}
	}
}
