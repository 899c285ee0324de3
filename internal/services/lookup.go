package services

import (
	"context"

	"github.com/checkfox/go_reassign/internal/client"
	"github.com/checkfox/go_reassign/internal/logger"
	"github.com/checkfox/go_reassign/internal/models"
)

// PhoneLookupBackend is the slice of the CRM client the duplicate lookup needs
type PhoneLookupBackend interface {
	CheckPhone(ctx context.Context, phone, userID, loanTypeName string) (*client.CheckPhoneResponse, error)
	ReassignmentEligibility(ctx context.Context, leadID, userID string) (*client.EligibilityResponse, error)
}

// MatchedVia identifies which of the caller's numbers resolved to a lead
type MatchedVia string

const (
	// MatchedViaPrimary means the primary phone number matched
	MatchedViaPrimary MatchedVia = "primary"

	// MatchedViaAlternate means only the alternate number matched
	MatchedViaAlternate MatchedVia = "alternate"
)

// LookupParams holds the input for a duplicate lookup
type LookupParams struct {
	Phone          string
	AlternatePhone string
	LoanTypeName   string
	UserID         string
}

// LookupMatch is a found duplicate, optionally enriched with eligibility
// data. Enrichment is nil when the eligibility call failed; the match is
// still usable without it.
type LookupMatch struct {
	Lead         models.LeadRecord
	Enrichment   *client.EligibilityResponse
	MatchedVia   MatchedVia
	MatchedPhone string
}

// DuplicateLookup resolves phone numbers to existing leads. Read-only: it
// never issues a state-changing call.
type DuplicateLookup struct {
	backend PhoneLookupBackend
	phones  *PhoneValidator
}

// NewDuplicateLookup creates a new DuplicateLookup instance
func NewDuplicateLookup(backend PhoneLookupBackend, phones *PhoneValidator) *DuplicateLookup {
	return &DuplicateLookup{
		backend: backend,
		phones:  phones,
	}
}

// Find checks the primary number and, when it yields nothing, the alternate.
// The primary match always takes precedence. A nil match with a nil error
// means no duplicate exists and the caller may proceed to lead creation.
//
// An invalid primary phone is a ValidationError. An HTTP failure on a
// duplicate check is a lookup failure and is propagated; a failure on the
// eligibility enrichment is swallowed and the match proceeds unenriched.
func (l *DuplicateLookup) Find(ctx context.Context, params LookupParams) (*LookupMatch, error) {
	primary, err := l.phones.NormalizeAndValidate(params.Phone)
	if err != nil {
		return nil, err
	}

	match, err := l.checkNumber(ctx, primary, MatchedViaPrimary, params)
	if err != nil {
		return nil, err
	}
	if match != nil {
		return match, nil
	}

	if params.AlternatePhone == "" {
		return nil, nil
	}

	// An unusable alternate number is skipped, not an error: the primary
	// already passed validation and found nothing
	alternate, err := l.phones.NormalizeAndValidate(params.AlternatePhone)
	if err != nil {
		logger.Debug(ctx, "Skipping invalid alternate phone", "error", err.Error())
		return nil, nil
	}

	return l.checkNumber(ctx, alternate, MatchedViaAlternate, params)
}

// checkNumber runs the two-step lookup for a single number: duplicate check
// first, then best-effort eligibility enrichment.
func (l *DuplicateLookup) checkNumber(ctx context.Context, phone string, via MatchedVia, params LookupParams) (*LookupMatch, error) {
	resp, err := l.backend.CheckPhone(ctx, phone, params.UserID, params.LoanTypeName)
	if err != nil {
		return nil, err
	}

	if !resp.Found || len(resp.Leads) == 0 {
		return nil, nil
	}

	match := &LookupMatch{
		Lead:         resp.Leads[0],
		MatchedVia:   via,
		MatchedPhone: phone,
	}

	enrichment, err := l.backend.ReassignmentEligibility(ctx, match.Lead.ID, params.UserID)
	if err != nil {
		logger.Warn(ctx, "Eligibility enrichment failed, proceeding without it",
			"lead_id", match.Lead.ID,
			"error", err.Error(),
		)
		return match, nil
	}

	match.Enrichment = enrichment
	mergeLeadOverrides(&match.Lead, enrichment.Lead)
	return match, nil
}

// mergeLeadOverrides folds the eligibility endpoint's fresher partial lead
// fields over the duplicate-check result
func mergeLeadOverrides(lead *models.LeadRecord, overrides *models.LeadRecord) {
	if overrides == nil {
		return
	}

	if overrides.Status != "" {
		lead.Status = overrides.Status
	}
	if overrides.SubStatus != "" {
		lead.SubStatus = overrides.SubStatus
	}
	if overrides.ReassignmentStatus != "" {
		lead.ReassignmentStatus = overrides.ReassignmentStatus
	}
	if overrides.LoginDepartmentSentDate != nil {
		lead.LoginDepartmentSentDate = overrides.LoginDepartmentSentDate
		lead.FileSentToLogin = overrides.FileSentToLogin
	}
	if len(overrides.AssignedTo) > 0 {
		lead.AssignedTo = overrides.AssignedTo
	}
	if overrides.TeamLead != "" {
		lead.TeamLead = overrides.TeamLead
	}
}
