package lifecycle

import (
	"time"

	"github.com/aussiebroadwan/invitelinks/pkg/policy"
)

// Link is an invitation link as the store reports it. Every field is
// assigned by the store at creation and never changes afterwards.
type Link struct {
	ID          string
	InviterID   string
	InviterName string
	InviteeName string
	URL         string
	CreatedAt   time.Time
}

// AnnotatedLink is a Link plus the expiry state derived at read time.
type AnnotatedLink struct {
	Link

	ExpiresAt time.Time
	Expired   bool
}

// Snapshot is an immutable view of a user's live links.
type Snapshot struct {
	// Links are ordered most recent first.
	Links     []AnnotatedLink
	Remaining int
	FetchedAt time.Time
}

// Find returns the link with the given id, if present in the snapshot.
func (s Snapshot) Find(id string) (AnnotatedLink, bool) {
	for _, l := range s.Links {
		if l.ID == id {
			return l, true
		}
	}
	return AnnotatedLink{}, false
}

// Created is the result of a successful CreateLink.
type Created struct {
	Link      AnnotatedLink
	Remaining int
}

func annotate(l Link, now time.Time) AnnotatedLink {
	return AnnotatedLink{
		Link:      l,
		ExpiresAt: policy.ExpiresAt(l.CreatedAt),
		Expired:   policy.IsExpired(l.CreatedAt, now),
	}
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Links = append([]AnnotatedLink(nil), s.Links...)
	return out
}
