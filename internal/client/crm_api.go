package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/checkfox/go_reassign/internal/models"
)

// StrategyPrimary and StrategyLegacy name the two endpoint tiers. Mixed
// backend versions exist in the field, so every operation keeps a legacy
// fallback until the old API is fully retired.
const (
	StrategyPrimary = "primary"
	StrategyLegacy  = "legacy"
)

// Client handles communication with the CRM backend's lead and
// reassignment endpoints
type Client struct {
	primaryBase string
	legacyBase  string
	token       string
	httpClient  *http.Client
}

// New creates a new CRM backend client. legacyBase may be empty, in which
// case no fallback tier is attempted.
func New(primaryBase, legacyBase, token string, timeout time.Duration) *Client {
	return &Client{
		primaryBase: primaryBase,
		legacyBase:  legacyBase,
		token:       token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CheckPhoneResponse represents the result of a phone duplicate check
type CheckPhoneResponse struct {
	Found bool                `json:"found"`
	Leads []models.LeadRecord `json:"leads"`
}

// EligibilityResponse represents the backend's reassignment eligibility
// enrichment for a found lead. The embedded lead carries partial overrides
// that are fresher than the duplicate-check result.
type EligibilityResponse struct {
	CanReassign               bool               `json:"can_reassign"`
	Reason                    string             `json:"reason"`
	DaysElapsed               int                `json:"days_elapsed"`
	ReassignmentPeriod        int                `json:"reassignment_period"`
	DaysRemaining             int                `json:"days_remaining"`
	ManagerPermissionRequired bool               `json:"is_manager_permission_required"`
	Lead                      *models.LeadRecord `json:"lead,omitempty"`
}

// RequestReassignmentParams holds everything sent with a request action
type RequestReassignmentParams struct {
	LeadID       string
	UserID       string
	TargetUserID string
	Reason       string
	Deltas       []models.FieldDelta
}

// ReassignmentOutcome reports the backend's resulting status for a request
// action, and which endpoint tier served it. The legacy tier cannot carry
// field deltas, so DeltasApplied tells the caller whether a follow-up
// update-fields call is needed.
type ReassignmentOutcome struct {
	Status        models.ReassignmentStatus
	ServedBy      string
	DeltasApplied bool
}

// ActivityEntry is one audit record appended to the backend's activity log
type ActivityEntry struct {
	Action      string              `json:"action"`
	ActorID     string              `json:"actor_id"`
	Outcome     string              `json:"outcome"`
	Reason      *string             `json:"reason,omitempty"`
	FieldDeltas []models.FieldDelta `json:"field_deltas,omitempty"`
	OccurredAt  time.Time           `json:"occurred_at"`
}

// CheckPhone looks up an existing lead by phone number. A failure here is a
// lookup failure for the caller; there is no graceful degradation on the
// primary duplicate check.
func (c *Client) CheckPhone(ctx context.Context, phone, userID, loanTypeName string) (*CheckPhoneResponse, error) {
	out := &CheckPhoneResponse{}

	query := url.Values{}
	query.Set("user_id", userID)
	if loanTypeName != "" {
		query.Set("loan_type_name", loanTypeName)
	}

	strategies := []endpointStrategy{
		{
			name:   StrategyPrimary,
			method: http.MethodGet,
			url:    fmt.Sprintf("%s/leads/check-phone/%s?%s", c.primaryBase, url.PathEscape(phone), query.Encode()),
			decode: func(data []byte) error {
				return json.Unmarshal(data, out)
			},
		},
	}

	if c.legacyBase != "" {
		strategies = append(strategies, endpointStrategy{
			name:   StrategyLegacy,
			method: http.MethodGet,
			url:    fmt.Sprintf("%s/crm/check_mobile/%s?%s", c.legacyBase, url.PathEscape(phone), query.Encode()),
			decode: func(data []byte) error {
				// Old shape: {"exists": bool, "lead": {...}}
				var legacy struct {
					Exists bool               `json:"exists"`
					Lead   *models.LeadRecord `json:"lead"`
				}
				if err := json.Unmarshal(data, &legacy); err != nil {
					return err
				}
				out.Found = legacy.Exists
				if legacy.Lead != nil {
					out.Leads = []models.LeadRecord{*legacy.Lead}
				}
				return nil
			},
		})
	}

	if _, err := c.call(ctx, models.ActionRequest, "", strategies); err != nil {
		return nil, err
	}
	return out, nil
}

// ReassignmentEligibility fetches the eligibility enrichment for a found
// lead. Callers treat failures as best-effort: the duplicate match remains
// usable without the eligibility fields.
func (c *Client) ReassignmentEligibility(ctx context.Context, leadID, userID string) (*EligibilityResponse, error) {
	out := &EligibilityResponse{}

	strategies := []endpointStrategy{
		{
			name:   StrategyPrimary,
			method: http.MethodGet,
			url:    fmt.Sprintf("%s/leads/%s/reassignment-eligibility?user_id=%s", c.primaryBase, url.PathEscape(leadID), url.QueryEscape(userID)),
			decode: func(data []byte) error {
				return json.Unmarshal(data, out)
			},
		},
	}

	if c.legacyBase != "" {
		strategies = append(strategies, endpointStrategy{
			name:   StrategyLegacy,
			method: http.MethodGet,
			url:    fmt.Sprintf("%s/crm/leads/%s/reassign_check?user_id=%s", c.legacyBase, url.PathEscape(leadID), url.QueryEscape(userID)),
			decode: func(data []byte) error {
				// Old shape: {"eligible": bool, "message": string,
				// "waiting_days": int, "days_passed": int}
				var legacy struct {
					Eligible    bool   `json:"eligible"`
					Message     string `json:"message"`
					WaitingDays int    `json:"waiting_days"`
					DaysPassed  int    `json:"days_passed"`
				}
				if err := json.Unmarshal(data, &legacy); err != nil {
					return err
				}
				out.CanReassign = legacy.Eligible
				out.Reason = legacy.Message
				out.ReassignmentPeriod = legacy.WaitingDays
				out.DaysElapsed = legacy.DaysPassed
				remaining := legacy.WaitingDays - legacy.DaysPassed
				if remaining < 0 {
					remaining = 0
				}
				out.DaysRemaining = remaining
				return nil
			},
		})
	}

	if _, err := c.call(ctx, models.ActionRequest, leadID, strategies); err != nil {
		return nil, err
	}
	return out, nil
}

// RequestReassignment issues the request action. The primary endpoint
// accepts a JSON body including field deltas; the legacy endpoint is
// query-parameter based and cannot carry deltas.
func (c *Client) RequestReassignment(ctx context.Context, params RequestReassignmentParams) (*ReassignmentOutcome, error) {
	outcome := &ReassignmentOutcome{}

	strategies := []endpointStrategy{
		{
			name:   StrategyPrimary,
			method: http.MethodPost,
			url:    fmt.Sprintf("%s/reassignment/request?user_id=%s", c.primaryBase, url.QueryEscape(params.UserID)),
			body: map[string]interface{}{
				"lead_id":        params.LeadID,
				"target_user_id": params.TargetUserID,
				"reason":         params.Reason,
				"field_deltas":   params.Deltas,
			},
			decode: func(data []byte) error {
				var resp struct {
					Status models.ReassignmentStatus `json:"status"`
				}
				if err := json.Unmarshal(data, &resp); err != nil {
					return err
				}
				outcome.Status = resp.Status
				return nil
			},
		},
	}

	if c.legacyBase != "" {
		query := url.Values{}
		query.Set("user_id", params.UserID)
		query.Set("lead_id", params.LeadID)
		query.Set("target_user_id", params.TargetUserID)
		query.Set("reason", params.Reason)

		strategies = append(strategies, endpointStrategy{
			name:   StrategyLegacy,
			method: http.MethodPost,
			url:    fmt.Sprintf("%s/crm/reassign_request?%s", c.legacyBase, query.Encode()),
			decode: func(data []byte) error {
				// Old shape: {"result": "pending" | "reassigned"}
				var legacy struct {
					Result string `json:"result"`
				}
				if err := json.Unmarshal(data, &legacy); err != nil {
					return err
				}
				if legacy.Result == "reassigned" {
					outcome.Status = models.ReassignmentStatusApproved
				} else {
					outcome.Status = models.ReassignmentStatusRequested
				}
				return nil
			},
		})
	}

	result, err := c.call(ctx, models.ActionRequest, params.LeadID, strategies)
	if err != nil {
		return nil, err
	}

	outcome.ServedBy = result.Name
	outcome.DeltasApplied = result.Name == StrategyPrimary || len(params.Deltas) == 0
	return outcome, nil
}

// ApproveReassignment resolves a pending request in favour of the requester.
// Manager-only on the backend side.
func (c *Client) ApproveReassignment(ctx context.Context, leadID, userID string) error {
	strategies := []endpointStrategy{
		{
			name:   StrategyPrimary,
			method: http.MethodPost,
			url:    fmt.Sprintf("%s/reassignment/approve/%s?user_id=%s", c.primaryBase, url.PathEscape(leadID), url.QueryEscape(userID)),
		},
	}

	if c.legacyBase != "" {
		strategies = append(strategies, endpointStrategy{
			name:   StrategyLegacy,
			method: http.MethodPost,
			url:    fmt.Sprintf("%s/crm/leads/%s/reassign/approve?user_id=%s", c.legacyBase, url.PathEscape(leadID), url.QueryEscape(userID)),
		})
	}

	_, err := c.call(ctx, models.ActionApprove, leadID, strategies)
	return err
}

// RejectReassignment resolves a pending request against the requester,
// recording the rejection reason. Manager-only on the backend side.
func (c *Client) RejectReassignment(ctx context.Context, leadID, userID, rejectionReason string) error {
	strategies := []endpointStrategy{
		{
			name:   StrategyPrimary,
			method: http.MethodPost,
			url:    fmt.Sprintf("%s/reassignment/reject/%s?user_id=%s", c.primaryBase, url.PathEscape(leadID), url.QueryEscape(userID)),
			body: map[string]interface{}{
				"rejection_reason": rejectionReason,
			},
		},
	}

	if c.legacyBase != "" {
		query := url.Values{}
		query.Set("user_id", userID)
		query.Set("rejection_reason", rejectionReason)

		strategies = append(strategies, endpointStrategy{
			name:   StrategyLegacy,
			method: http.MethodPost,
			url:    fmt.Sprintf("%s/crm/leads/%s/reassign/reject?%s", c.legacyBase, url.PathEscape(leadID), query.Encode()),
		})
	}

	_, err := c.call(ctx, models.ActionReject, leadID, strategies)
	return err
}

// UpdateLeadFields applies field-level deltas (data code, campaign name)
// to a lead. Used as a best-effort follow-up when the legacy request
// endpoint served the transition and could not carry the deltas itself.
func (c *Client) UpdateLeadFields(ctx context.Context, leadID, userID string, deltas []models.FieldDelta) error {
	strategies := []endpointStrategy{
		{
			name:   StrategyPrimary,
			method: http.MethodPatch,
			url:    fmt.Sprintf("%s/reassignment/leads/%s/update-fields?user_id=%s", c.primaryBase, url.PathEscape(leadID), url.QueryEscape(userID)),
			body: map[string]interface{}{
				"field_deltas": deltas,
			},
		},
	}

	if c.legacyBase != "" {
		strategies = append(strategies, endpointStrategy{
			name:   StrategyLegacy,
			method: http.MethodPatch,
			url:    fmt.Sprintf("%s/crm/leads/%s/fields?user_id=%s", c.legacyBase, url.PathEscape(leadID), url.QueryEscape(userID)),
			body: map[string]interface{}{
				"field_deltas": deltas,
			},
		})
	}

	_, err := c.call(ctx, models.ActionRequest, leadID, strategies)
	return err
}

// AppendActivity appends a best-effort audit entry to the backend's
// activity log for a lead. Returns the HTTP status of the serving tier so
// delivery attempts can be recorded.
func (c *Client) AppendActivity(ctx context.Context, leadID string, entry ActivityEntry) (int, error) {
	strategies := []endpointStrategy{
		{
			name:   StrategyPrimary,
			method: http.MethodPost,
			url:    fmt.Sprintf("%s/reassignment/leads/%s/activity", c.primaryBase, url.PathEscape(leadID)),
			body:   entry,
		},
	}

	if c.legacyBase != "" {
		strategies = append(strategies, endpointStrategy{
			name:   StrategyLegacy,
			method: http.MethodPost,
			url:    fmt.Sprintf("%s/crm/leads/%s/activity-log", c.legacyBase, url.PathEscape(leadID)),
			body:   entry,
		})
	}

	result, err := c.call(ctx, models.ActionRequest, leadID, strategies)
	if err != nil {
		return 0, err
	}
	return result.StatusCode, nil
}
