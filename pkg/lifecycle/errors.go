package lifecycle

import "errors"

var (
	// ErrInvalidName is returned when the invitee name is empty after
	// trimming whitespace or longer than policy.MaxInviteeNameLength.
	ErrInvalidName = errors.New("lifecycle: invalid invitee name")

	// ErrQuotaExceeded is returned when the user already holds the maximum
	// number of live links. It is produced locally, before the store is
	// called, or surfaced from a store-side rejection.
	ErrQuotaExceeded = errors.New("lifecycle: invitation quota exceeded")

	// ErrLinkNotFound is returned when revoking a link that is not in the
	// user's live set.
	ErrLinkNotFound = errors.New("lifecycle: invitation link not found")

	// ErrLinkExpired is returned when sharing a link past its validity window.
	ErrLinkExpired = errors.New("lifecycle: invitation link expired")

	// ErrStoreUnavailable wraps any collaborator failure that is not one of
	// the distinguished store rejections above.
	ErrStoreUnavailable = errors.New("lifecycle: link store unavailable")
)

// ErrNoClipboard is returned by CopyShareableURL when the manager was built
// without a clipboard.
var ErrNoClipboard = errors.New("lifecycle: no clipboard configured")
