package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access-token claims issued by the auth service. Only the
// fields the link service reads are declared; anything else in the token is
// ignored.
type Claims struct {
	jwt.RegisteredClaims

	// Session ID
	SID string `json:"sid,omitempty"`

	// Permission scopes, e.g. "invites:read", "invites:write".
	Scopes []string `json:"scopes,omitempty"`

	Username      string `json:"username,omitempty"`
	PreferredName string `json:"preferred_name,omitempty"`
}

// NewAccessClaims builds claims the way the auth service mints them. The link
// service only verifies tokens; this exists for tests and local tooling.
func NewAccessClaims(
	subject string,
	scopes []string,
	ttl time.Duration,
	issuer string,
	username, preferredName string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Scopes:        scopes,
		Username:      username,
		PreferredName: preferredName,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// DisplayName is the name shown to invitees: the preferred name, then the
// username, then the subject.
func (c *Claims) DisplayName() string {
	switch {
	case c.PreferredName != "":
		return c.PreferredName
	case c.Username != "":
		return c.Username
	default:
		return c.Subject
	}
}

// ValidateIssuer checks the issuer. An empty expectation accepts anything.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" || c.Issuer == expected {
		return nil
	}
	return ErrIssuer
}

// ValidateAudience checks that at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateTimeAt checks exp and nbf against now, allowing leeway for clock skew.
func (c *Claims) ValidateTimeAt(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
