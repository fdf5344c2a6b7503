package linksdk

import (
	"context"
	"net/http"
	"net/url"
)

// ListLinks returns the member's links, newest first, with the remaining quota.
func (s *Session) ListLinks(ctx context.Context) (*ListLinksResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/invitation-links", nil, ScopeRead)
	if err != nil {
		return nil, err
	}

	var out ListLinksResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateLink issues a link for inviteeName.
func (s *Session) CreateLink(ctx context.Context, inviteeName string) (*Link, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/invitation-links",
		CreateLinkRequest{Name: inviteeName}, ScopeWrite)
	if err != nil {
		return nil, err
	}

	var out Link
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteLink revokes a link.
func (s *Session) DeleteLink(ctx context.Context, linkID string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete,
		"/v1/invitation-links/"+url.PathEscape(linkID), nil, ScopeWrite)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
