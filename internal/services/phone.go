package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/checkfox/go_reassign/internal/models"
	"github.com/nyaruka/phonenumbers"
)

// phoneRegion is the CRM's operating region, used for parsing raw input
const phoneRegion = "IN"

// PhoneValidator normalizes raw phone input and enforces the CRM's
// duplicate-check rule: exactly 10 digits with a leading 6-9.
type PhoneValidator struct {
	mobilePattern *regexp.Regexp
	digitPattern  *regexp.Regexp
}

// NewPhoneValidator creates a new PhoneValidator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{
		mobilePattern: regexp.MustCompile(`^[6-9]\d{9}$`),
		digitPattern:  regexp.MustCompile(`\D`),
	}
}

// Normalize strips formatting from raw phone input. Numbers arrive with
// country prefixes, punctuation, and whitespace; the CRM stores bare
// 10-digit national numbers.
func (p *PhoneValidator) Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if parsed, err := phonenumbers.Parse(raw, phoneRegion); err == nil {
		return strconv.FormatUint(parsed.GetNationalNumber(), 10)
	}

	// Unparseable input still gets a digit-stripping pass so that inputs
	// like "98765 43210" or "091-9876543210" survive
	digits := p.digitPattern.ReplaceAllString(raw, "")
	if len(digits) == 12 && strings.HasPrefix(digits, "91") {
		digits = digits[2:]
	}
	if len(digits) == 11 && strings.HasPrefix(digits, "0") {
		digits = digits[1:]
	}
	return digits
}

// Validate checks a normalized phone against the 10-digit mobile rule
func (p *PhoneValidator) Validate(phone string) error {
	if !p.mobilePattern.MatchString(phone) {
		return models.NewValidationError("phone", "must be 10 digits starting with 6-9")
	}
	return nil
}

// NormalizeAndValidate is the combined entry point used by the lookup
func (p *PhoneValidator) NormalizeAndValidate(raw string) (string, error) {
	phone := p.Normalize(raw)
	if err := p.Validate(phone); err != nil {
		return "", err
	}
	return phone, nil
}
