package linksdk

import "time"

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Link is an invitation link as returned by the service.
type Link struct {
	ID          string     `json:"id"`
	InviteeName string     `json:"invitee_name"`
	InviterName string     `json:"inviter_name"`
	URL         string     `json:"url"`
	CreatedAt   time.Time  `json:"created_at"`
	RedeemedAt  *time.Time `json:"redeemed_at,omitempty"`
}

// ListLinksResponse is returned by GET /v1/invitation-links.
type ListLinksResponse struct {
	Links     []Link `json:"links"`
	Remaining int    `json:"remaining"`
	MaxLinks  int    `json:"max_links"`
}

// CreateLinkRequest is the body of POST /v1/invitation-links.
type CreateLinkRequest struct {
	Name string `json:"name"`
}

// WelcomeResponse is what an invitee sees for a valid code.
type WelcomeResponse struct {
	InviterName string    `json:"inviter_name"`
	InviteeName string    `json:"invitee_name"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// RedeemRequest is the body of POST /v1/welcome/redeem.
type RedeemRequest struct {
	Code   string `json:"code"`
	UserID string `json:"user_id"`
}

// RedeemResponse tells the registration flow who invited the new member.
type RedeemResponse struct {
	LinkID      string `json:"link_id"`
	InviterID   string `json:"inviter_id"`
	InviterName string `json:"inviter_name"`
	InviteeName string `json:"invitee_name"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Verifier string `json:"verifier"`
}
