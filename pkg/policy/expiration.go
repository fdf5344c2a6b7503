package policy

import "time"

// ValidityWindow is how long a link stays shareable after creation. It is a
// fixed number of seconds (604800) so calendar and DST changes never shift it.
const ValidityWindow = 7 * 24 * time.Hour

// ExpiresAt returns the instant a link created at createdAt stops being
// shareable.
func ExpiresAt(createdAt time.Time) time.Time {
	return createdAt.Add(ValidityWindow)
}

// IsExpired reports whether a link created at createdAt has expired at now.
// The boundary instant itself is still valid.
func IsExpired(createdAt, now time.Time) bool {
	return now.After(ExpiresAt(createdAt))
}
