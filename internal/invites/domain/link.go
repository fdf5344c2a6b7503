package domain

import (
	"time"

	"github.com/aussiebroadwan/invitelinks/pkg/policy"
)

// Link is a stored invitation link.
type Link struct {
	ID          string
	InviterID   string
	InviterName string
	InviteeName string
	// Code is the opaque token embedded in URL.
	Code       string
	URL        string
	CreatedAt  time.Time
	RedeemedBy string
	RedeemedAt *time.Time
}

// ExpiresAt is derived from CreatedAt and never stored.
func (l Link) ExpiresAt() time.Time { return policy.ExpiresAt(l.CreatedAt) }

// IsExpired reports whether the validity window has elapsed at now.
func (l Link) IsExpired(now time.Time) bool { return policy.IsExpired(l.CreatedAt, now) }

// Redeemed reports whether a new member has already registered with the link.
func (l Link) Redeemed() bool { return l.RedeemedAt != nil }
