package models

import (
	"fmt"
	"net/http"
)

// ValidationError represents an input problem caught before any network call
// (invalid phone number, missing reason). Zero side effects by the time it
// is returned.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Detail)
	}
	return fmt.Sprintf("validation error on field '%s'", e.Field)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, detail string) *ValidationError {
	return &ValidationError{
		Field:  field,
		Detail: detail,
	}
}

// PermissionError represents a refused action, either by the client-side
// permission gate (no call issued) or by a 403 from the backend. Manager
// actions and requester actions carry different phrasing.
type PermissionError struct {
	Action     ReassignmentAction
	ForManager bool
	Message    string
}

func (e *PermissionError) Error() string {
	if e.ForManager {
		return fmt.Sprintf("permission denied for %s: %s (manager approval rights required)", e.Action, e.Message)
	}
	return fmt.Sprintf("not eligible for %s: %s", e.Action, e.Message)
}

// NewPermissionError creates a new PermissionError
func NewPermissionError(action ReassignmentAction, forManager bool, message string) *PermissionError {
	return &PermissionError{
		Action:     action,
		ForManager: forManager,
		Message:    message,
	}
}

// NotFoundError represents a 404 from the backend for a lead
type NotFoundError struct {
	LeadID string
}

func (e *NotFoundError) Error() string {
	if e.LeadID != "" {
		return fmt.Sprintf("lead not found: %s", e.LeadID)
	}
	return "lead not found"
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(leadID string) *NotFoundError {
	return &NotFoundError{LeadID: leadID}
}

// ConflictError represents a conflicting pending request, either detected
// locally (a dispatch already in flight for the lead) or by a 409 from the
// backend.
type ConflictError struct {
	LeadID  string
	Message string
}

func (e *ConflictError) Error() string {
	if e.LeadID != "" {
		return fmt.Sprintf("conflict on lead %s: %s", e.LeadID, e.Message)
	}
	return fmt.Sprintf("conflict: %s", e.Message)
}

// NewConflictError creates a new ConflictError
func NewConflictError(leadID, message string) *ConflictError {
	return &ConflictError{
		LeadID:  leadID,
		Message: message,
	}
}

// TransportError represents a network failure or an HTTP error outside the
// mapped taxonomy, surfaced verbatim to the caller.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		if e.Err != nil {
			return fmt.Sprintf("transport error: HTTP %d - %s (caused by: %v)", e.StatusCode, e.Message, e.Err)
		}
		return fmt.Sprintf("transport error: HTTP %d - %s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("transport error: %s (caused by: %v)", e.Message, e.Err)
	}
	return fmt.Sprintf("transport error: %s", e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new TransportError
func NewTransportError(statusCode int, message string, err error) *TransportError {
	return &TransportError{
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// ClassifyHTTPError maps a non-2xx backend response onto the workflow error
// taxonomy. 403 phrasing is decided by the action: approve/reject are
// manager actions, everything else is requester-side.
func ClassifyHTTPError(action ReassignmentAction, leadID string, statusCode int, body string) error {
	switch statusCode {
	case http.StatusForbidden:
		forManager := action == ActionApprove || action == ActionReject
		return NewPermissionError(action, forManager, body)
	case http.StatusNotFound:
		return NewNotFoundError(leadID)
	case http.StatusConflict:
		return NewConflictError(leadID, "conflicting pending request exists")
	default:
		return NewTransportError(statusCode, body, nil)
	}
}
