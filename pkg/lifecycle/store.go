package lifecycle

import "context"

// LinkStore is the remote, durable record of invitation links.
//
// Implementations signal the two distinguished rejections by returning an
// error that matches ErrQuotaExceeded (from Create) or ErrLinkNotFound (from
// Delete) under errors.Is. Any other error is treated as a transport or
// server failure.
type LinkStore interface {
	List(ctx context.Context, userID string) ([]Link, error)
	Create(ctx context.Context, userID, inviteeName string) (Link, error)
	Delete(ctx context.Context, userID, linkID string) error
}

// Clipboard receives shareable URLs. It is usually backed by the platform
// clipboard of whatever is presenting the links.
type Clipboard interface {
	Copy(ctx context.Context, text string) error
}

// ClipboardFunc adapts a function to the Clipboard interface.
type ClipboardFunc func(ctx context.Context, text string) error

func (f ClipboardFunc) Copy(ctx context.Context, text string) error { return f(ctx, text) }
