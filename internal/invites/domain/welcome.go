package domain

import "time"

// Welcome is what an invitee sees when opening a link: who invited them and
// until when the link is valid.
type Welcome struct {
	LinkID      string
	InviterID   string
	InviterName string
	InviteeName string
	ExpiresAt   time.Time
}

// WelcomeFor projects a link into its public view.
func WelcomeFor(l Link) Welcome {
	return Welcome{
		LinkID:      l.ID,
		InviterID:   l.InviterID,
		InviterName: l.InviterName,
		InviteeName: l.InviteeName,
		ExpiresAt:   l.ExpiresAt(),
	}
}
