package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONB is a custom type for PostgreSQL JSONB columns
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface for JSONB
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface for JSONB
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}

	*j = result
	return nil
}

// UserIDList holds one or more owner identifiers. Older backend versions
// return a single string where newer ones return an array, so both wire
// shapes unmarshal into the same type.
type UserIDList []string

// UnmarshalJSON accepts either a JSON string or a JSON array of strings
func (u *UserIDList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*u = nil
		} else {
			*u = UserIDList{single}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("user id list must be a string or array of strings: %w", err)
	}
	*u = UserIDList(many)
	return nil
}

// Contains reports whether the given user ID is in the list
func (u UserIDList) Contains(userID string) bool {
	for _, id := range u {
		if id == userID {
			return true
		}
	}
	return false
}

// LeadRecord represents a lead as returned by the CRM backend.
// The backend is the system of record; this service never mutates a
// LeadRecord except through the reassignment endpoints.
type LeadRecord struct {
	ID                      string             `json:"id"`
	Phone                   string             `json:"phone"`
	AlternatePhone          string             `json:"alternate_phone,omitempty"`
	Name                    string             `json:"name,omitempty"`
	Email                   string             `json:"email,omitempty"`
	Status                  string             `json:"status,omitempty"`
	SubStatus               string             `json:"sub_status,omitempty"`
	LoanTypeName            string             `json:"loan_type_name,omitempty"`
	LoanAmount              float64            `json:"loan_amount,omitempty"`
	DataCode                string             `json:"data_code,omitempty"`
	CampaignName            string             `json:"campaign_name,omitempty"`
	CreatedAt               time.Time          `json:"created_at"`
	FileSentToLogin         bool               `json:"file_sent_to_login"`
	LoginDepartmentSentDate *time.Time         `json:"login_department_sent_date,omitempty"`
	AssignedTo              UserIDList         `json:"assigned_to,omitempty"`
	AssignedToName          string             `json:"assigned_to_name,omitempty"`
	CreatedBy               string             `json:"created_by"`
	TeamLead                string             `json:"team_lead,omitempty"`
	ReassignmentStatus      ReassignmentStatus `json:"reassignment_status,omitempty"`
}

// AgeBase returns the timestamp the lead's age is computed from: the
// login-department-sent date once the file has gone to login, the creation
// date otherwise. Every derived figure (days elapsed, days remaining,
// available-on date) must use this same base.
func (l *LeadRecord) AgeBase() time.Time {
	if l.FileSentToLogin && l.LoginDepartmentSentDate != nil {
		return *l.LoginDepartmentSentDate
	}
	return l.CreatedAt
}

// PermissionSet is the caller's permission snapshot for a single action.
// It is built fresh per request and never cached, since the underlying
// permission source can change between actions.
type PermissionSet struct {
	UserID                    string `json:"user_id"`
	CanApproveReassignment    bool   `json:"can_approve_reassignment"`
	CanViewReassignmentDetail bool   `json:"can_view_reassignment_detail"`
	CanCreateLead             bool   `json:"can_create_lead"`
}

// FieldDelta records a single field-level change bundled with a
// reassignment request, kept for audit purposes.
type FieldDelta struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// FieldDeltaList is a JSONB-persistable list of field deltas
type FieldDeltaList []FieldDelta

// Value implements the driver.Valuer interface for FieldDeltaList
func (f FieldDeltaList) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// Scan implements the sql.Scanner interface for FieldDeltaList
func (f *FieldDeltaList) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal field delta value: %v", value)
	}

	var result []FieldDelta
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}

	*f = result
	return nil
}

// FormSnapshot holds the lead-creation form fields repopulated from an
// existing lead after a direct (non-pending) reassignment.
type FormSnapshot struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	AlternatePhone string  `json:"alternate_phone,omitempty"`
	LoanTypeName   string  `json:"loan_type_name,omitempty"`
	LoanAmount     float64 `json:"loan_amount,omitempty"`
	DataCode       string  `json:"data_code,omitempty"`
	CampaignName   string  `json:"campaign_name,omitempty"`
	Status         string  `json:"status,omitempty"`
	SubStatus      string  `json:"sub_status,omitempty"`
}
