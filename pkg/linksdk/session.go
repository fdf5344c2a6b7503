package linksdk

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ScopeRead   = "invites:read"
	ScopeWrite  = "invites:write"
	ScopeRedeem = "invites:redeem"
)

var ErrInvalidToken = errors.New("linksdk: invalid access token")

// Session is an authenticated view of the service for one member. The token
// is not refreshed; callers obtain a new session once it expires.
type Session struct {
	client *Client

	accessToken string
	subject     string
	expiresAt   time.Time
	scopes      map[string]bool
}

// sessionClaims mirrors the fields of the auth service's access tokens the
// session needs. The signature is checked by the server, not here.
type sessionClaims struct {
	jwt.RegisteredClaims
	Scopes []string `json:"scopes,omitempty"`
	Scope  string   `json:"scope,omitempty"`
}

// NewSession creates a session from an access token.
func (c *Client) NewSession(accessToken string) (*Session, error) {
	accessToken = strings.TrimSpace(strings.TrimPrefix(accessToken, "Bearer "))
	if accessToken == "" {
		return nil, ErrInvalidToken
	}

	var claims sessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	scopes := parseScopes(claims.Scope)
	for _, s := range claims.Scopes {
		scopes[s] = true
	}

	s := &Session{
		client:      c,
		accessToken: accessToken,
		subject:     claims.Subject,
		scopes:      scopes,
	}
	if claims.ExpiresAt != nil {
		s.expiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// UserID is the token subject.
func (s *Session) UserID() string { return s.subject }

// ExpiresAt is the token expiry, zero when the token has none.
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

// HasScope reports whether the token was granted scope.
func (s *Session) HasScope(scope string) bool { return s.scopes[scope] }

// parseScopes parses a space-delimited scope string into a set.
func parseScopes(scopeStr string) map[string]bool {
	parts := strings.Fields(scopeStr)
	scopes := make(map[string]bool, len(parts))
	for _, scope := range parts {
		scopes[scope] = true
	}
	return scopes
}

func (s *Session) checkScopes(required ...string) error {
	if !s.client.CheckScopes || len(required) == 0 {
		return nil
	}

	var missing []string
	for _, scope := range required {
		if !s.scopes[scope] {
			missing = append(missing, scope)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingScope, strings.Join(missing, ", "))
	}
	return nil
}
