package services

import (
	"regexp"
	"strings"

	"github.com/checkfox/go_reassign/internal/models"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// BuildFormSnapshot maps an existing lead's data onto the lead-creation form
// fields. Only direct reassignments repopulate the form: a pending request
// has not transferred ownership yet, so the caller must not see the lead's
// data as its own.
func BuildFormSnapshot(lead models.LeadRecord) *models.FormSnapshot {
	return &models.FormSnapshot{
		Name:           cleanString(lead.Name),
		Email:          cleanEmail(lead.Email),
		Phone:          lead.Phone,
		AlternatePhone: lead.AlternatePhone,
		LoanTypeName:   cleanString(lead.LoanTypeName),
		LoanAmount:     lead.LoanAmount,
		DataCode:       cleanString(lead.DataCode),
		CampaignName:   cleanString(lead.CampaignName),
		Status:         lead.Status,
		SubStatus:      lead.SubStatus,
	}
}

// cleanString trims and collapses internal whitespace
func cleanString(s string) string {
	s = strings.TrimSpace(s)
	return whitespaceRun.ReplaceAllString(s, " ")
}

// cleanEmail lowercases and trims an email address
func cleanEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
