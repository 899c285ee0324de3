package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/checkfox/go_reassign/internal/client"
	"github.com/checkfox/go_reassign/internal/models"
	"github.com/checkfox/go_reassign/internal/services"
)

// fakePhoneBackend serves canned duplicate-check and eligibility responses
type fakePhoneBackend struct {
	lead       *models.LeadRecord
	enrichment *client.EligibilityResponse
	checkErr   error
}

func (f *fakePhoneBackend) CheckPhone(ctx context.Context, phone, userID, loanTypeName string) (*client.CheckPhoneResponse, error) {
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	if f.lead == nil {
		return &client.CheckPhoneResponse{Found: false}, nil
	}
	return &client.CheckPhoneResponse{Found: true, Leads: []models.LeadRecord{*f.lead}}, nil
}

func (f *fakePhoneBackend) ReassignmentEligibility(ctx context.Context, leadID, userID string) (*client.EligibilityResponse, error) {
	if f.enrichment == nil {
		return nil, models.NewTransportError(500, "no enrichment", nil)
	}
	return f.enrichment, nil
}

func newLookupFixture(backend *fakePhoneBackend) (*LookupHandler, *services.SessionStore) {
	sessions := services.NewSessionStore()
	handler := NewLookupHandler(
		services.NewDuplicateLookup(backend, services.NewPhoneValidator()),
		services.NewCalculator(),
		sessions,
	)
	return handler, sessions
}

func duplicateCheckRequest(phone, userID string, headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/leads/duplicate-check?phone="+phone, nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestHandleDuplicateCheck_NotFound(t *testing.T) {
	handler, _ := newLookupFixture(&fakePhoneBackend{})

	rec := httptest.NewRecorder()
	handler.HandleDuplicateCheck(rec, duplicateCheckRequest("9876543210", "user-1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp DuplicateCheckResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Found {
		t.Error("Expected found=false")
	}
	if resp.SessionID != "" {
		t.Error("Expected no session for a miss")
	}
}

func TestHandleDuplicateCheck_FoundWithDetail(t *testing.T) {
	backend := &fakePhoneBackend{
		lead: &models.LeadRecord{
			ID:             "lead-1",
			Phone:          "9876543210",
			CreatedAt:      time.Now().AddDate(0, 0, -45),
			CreatedBy:      "creator-1",
			AssignedToName: "Ravi",
		},
		enrichment: &client.EligibilityResponse{ReassignmentPeriod: 30},
	}
	handler, sessions := newLookupFixture(backend)

	rec := httptest.NewRecorder()
	handler.HandleDuplicateCheck(rec, duplicateCheckRequest("9876543210", "user-1", map[string]string{
		"X-Can-View-Reassignment-Detail": "true",
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp DuplicateCheckResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if !resp.Found {
		t.Fatal("Expected found=true")
	}
	if resp.SessionID == "" {
		t.Fatal("Expected a session ID")
	}
	if resp.Lead == nil || resp.Lead.ID != "lead-1" {
		t.Errorf("Expected full lead in response, got %+v", resp.Lead)
	}
	if resp.Eligibility == nil || !resp.Eligibility.CanReassign {
		t.Errorf("Expected eligible result, got %+v", resp.Eligibility)
	}
	if resp.Panel != models.PanelRequest {
		t.Errorf("Expected request panel, got %s", resp.Panel)
	}

	// The session carries the state the action endpoints will consume
	session := sessions.Get(resp.SessionID)
	if session == nil || session.Lead.ID != "lead-1" {
		t.Error("Expected session stored for follow-up actions")
	}
}

// Callers without detail permission get only the owner's name and a notice.
func TestHandleDuplicateCheck_MinimalPanelWithheld(t *testing.T) {
	backend := &fakePhoneBackend{
		lead: &models.LeadRecord{
			ID:             "lead-1",
			Phone:          "9876543210",
			CreatedAt:      time.Now().AddDate(0, 0, -45),
			CreatedBy:      "creator-1",
			AssignedToName: "Ravi",
		},
		enrichment: &client.EligibilityResponse{ReassignmentPeriod: 30},
	}
	handler, _ := newLookupFixture(backend)

	rec := httptest.NewRecorder()
	handler.HandleDuplicateCheck(rec, duplicateCheckRequest("9876543210", "user-1", nil))

	var resp DuplicateCheckResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Panel != models.PanelMinimal {
		t.Errorf("Expected minimal panel, got %s", resp.Panel)
	}
	if resp.Lead != nil || resp.Eligibility != nil {
		t.Error("Expected lead and eligibility withheld on the minimal panel")
	}
	if resp.AssignedToName != "Ravi" {
		t.Errorf("Expected owner name shown, got %q", resp.AssignedToName)
	}
	if resp.Notice == "" {
		t.Error("Expected a duplicate notice")
	}
}

func TestHandleDuplicateCheck_InvalidPhone(t *testing.T) {
	handler, _ := newLookupFixture(&fakePhoneBackend{})

	rec := httptest.NewRecorder()
	handler.HandleDuplicateCheck(rec, duplicateCheckRequest("12345", "user-1", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestHandleDuplicateCheck_MissingCaller(t *testing.T) {
	handler, _ := newLookupFixture(&fakePhoneBackend{})

	rec := httptest.NewRecorder()
	handler.HandleDuplicateCheck(rec, duplicateCheckRequest("9876543210", "", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing caller identity, got %d", rec.Code)
	}
}

func TestHandleDuplicateCheck_BackendDown(t *testing.T) {
	handler, _ := newLookupFixture(&fakePhoneBackend{
		checkErr: models.NewTransportError(503, "backend down", nil),
	})

	rec := httptest.NewRecorder()
	handler.HandleDuplicateCheck(rec, duplicateCheckRequest("9876543210", "user-1", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.CorrelationID == "" {
		t.Error("Expected a correlation ID on the error response")
	}
}

// user_id may arrive as a query parameter when no front door sets headers
func TestPermissionsFromRequest_QueryFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/leads/duplicate-check?user_id=user-9", nil)

	perms := permissionsFromRequest(req)
	if perms.UserID != "user-9" {
		t.Errorf("Expected user-9 from query, got %q", perms.UserID)
	}

	req.Header.Set("X-User-ID", "user-1")
	perms = permissionsFromRequest(req)
	if perms.UserID != "user-1" {
		t.Errorf("Expected header to win, got %q", perms.UserID)
	}
}
