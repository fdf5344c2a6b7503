package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/invitelinks/internal/invites/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrQuotaExceeded is returned by CreateLinkWithinQuota when the inviter
	// already holds the maximum number of links.
	ErrQuotaExceeded = errors.New("store: link quota exceeded")
)

// Store is the root data access interface. Drivers expose sub-repositories so
// transactional and non-transactional access share one shape.
type Store interface {
	Links() Links

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller must Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Links interface {
	// ListLinksByInviter returns an inviter's links, newest first with ties
	// in id order.
	ListLinksByInviter(ctx context.Context, inviterID string) ([]domain.Link, error)

	// GetLinkByInviterAndID returns one of an inviter's links. Links owned by
	// someone else are reported as ErrNotFound.
	GetLinkByInviterAndID(ctx context.Context, inviterID, linkID string) (domain.Link, error)

	// CreateLinkWithinQuota inserts l only if its inviter holds fewer than
	// maxLinks links. The count and the insert are a single statement.
	CreateLinkWithinQuota(ctx context.Context, l domain.Link, maxLinks int) error

	// GetLinkByCode looks a link up by its shareable code.
	GetLinkByCode(ctx context.Context, code string) (domain.Link, error)

	// DeleteLink removes an inviter's link. Links owned by someone else are
	// reported as ErrNotFound.
	DeleteLink(ctx context.Context, inviterID, linkID string) error

	// MarkLinkRedeemed records the user who registered with the link. A link
	// that is already redeemed is reported as ErrAlreadyExists.
	MarkLinkRedeemed(ctx context.Context, l domain.Link) error
}
