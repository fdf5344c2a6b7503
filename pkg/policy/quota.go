// Package policy holds the pure rules shared by the link service and its
// clients: how many invitation links an inviter may hold at once and how long
// a link stays shareable.
package policy

// MaxLinks is the number of live (non-revoked) invitation links a single
// inviter may hold at any time.
const MaxLinks = 5

// MaxInviteeNameLength caps the free-text label attached to a link.
const MaxInviteeNameLength = 255

// Remaining returns how many more links an inviter holding count live links
// may create. It never goes negative, even if the store somehow holds more
// than MaxLinks.
func Remaining(count int) int {
	return max(0, MaxLinks-count)
}

// CanCreate reports whether an inviter holding count live links may create
// another one.
func CanCreate(count int) bool {
	return Remaining(count) > 0
}
