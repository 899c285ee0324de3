package queue

import (
	"encoding/json"
	"testing"
)

func TestNewActivityJobPayload_RoundTrip(t *testing.T) {
	payload := NewActivityJobPayload(42, "lead-1")

	auditID, ok := GetAuditID(payload)
	if !ok || auditID != 42 {
		t.Errorf("Expected audit_id 42, got %d (ok=%v)", auditID, ok)
	}

	leadID, ok := GetLeadID(payload)
	if !ok || leadID != "lead-1" {
		t.Errorf("Expected lead-1, got %q (ok=%v)", leadID, ok)
	}
}

// Payloads come back from the database through JSON decoding, which turns
// numbers into float64.
func TestGetAuditID_AfterJSONDecode(t *testing.T) {
	data, err := json.Marshal(NewActivityJobPayload(42, "lead-1"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	auditID, ok := GetAuditID(decoded)
	if !ok || auditID != 42 {
		t.Errorf("Expected audit_id 42 after JSON round trip, got %d (ok=%v)", auditID, ok)
	}
}

func TestGetAuditID_Missing(t *testing.T) {
	if _, ok := GetAuditID(map[string]interface{}{}); ok {
		t.Error("Expected missing audit_id to report not ok")
	}
	if _, ok := GetAuditID(map[string]interface{}{"audit_id": "nope"}); ok {
		t.Error("Expected non-numeric audit_id to report not ok")
	}
}

func TestGetLeadID_Missing(t *testing.T) {
	if _, ok := GetLeadID(map[string]interface{}{}); ok {
		t.Error("Expected missing lead_id to report not ok")
	}
	if _, ok := GetLeadID(map[string]interface{}{"lead_id": ""}); ok {
		t.Error("Expected empty lead_id to report not ok")
	}
	if _, ok := GetLeadID(map[string]interface{}{"lead_id": 7}); ok {
		t.Error("Expected non-string lead_id to report not ok")
	}
}
