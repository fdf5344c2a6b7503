package linksdk

import (
	"context"
	"net/http"
	"net/url"
)

// Welcome resolves a shareable code. It needs no session.
func (c *Client) Welcome(ctx context.Context, code string) (*WelcomeResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/welcome?code="+url.QueryEscape(code), nil)
	if err != nil {
		return nil, err
	}

	var out WelcomeResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Redeem marks the link behind code as used by the newly registered userID.
// It is called by the registration flow with a service token.
func (s *Session) Redeem(ctx context.Context, code, userID string) (*RedeemResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/welcome/redeem",
		RedeemRequest{Code: code, UserID: userID}, ScopeRedeem)
	if err != nil {
		return nil, err
	}

	var out RedeemResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
