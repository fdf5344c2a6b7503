package linksdk

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/invitelinks/pkg/lifecycle"
)

// LinkStore implements lifecycle.LinkStore over a Session. The service
// derives the member from the token, so userID must match the session.
type LinkStore struct {
	Session *Session
}

var _ lifecycle.LinkStore = (*LinkStore)(nil)

func NewLinkStore(s *Session) *LinkStore { return &LinkStore{Session: s} }

func (l *LinkStore) List(ctx context.Context, userID string) ([]lifecycle.Link, error) {
	if err := l.checkUser(userID); err != nil {
		return nil, err
	}

	resp, err := l.Session.ListLinks(ctx)
	if err != nil {
		return nil, translate(err)
	}

	links := make([]lifecycle.Link, 0, len(resp.Links))
	for _, link := range resp.Links {
		links = append(links, toLifecycle(userID, link))
	}
	return links, nil
}

func (l *LinkStore) Create(ctx context.Context, userID, inviteeName string) (lifecycle.Link, error) {
	if err := l.checkUser(userID); err != nil {
		return lifecycle.Link{}, err
	}

	link, err := l.Session.CreateLink(ctx, inviteeName)
	if err != nil {
		return lifecycle.Link{}, translate(err)
	}
	return toLifecycle(userID, *link), nil
}

func (l *LinkStore) Delete(ctx context.Context, userID, linkID string) error {
	if err := l.checkUser(userID); err != nil {
		return err
	}
	return translate(l.Session.DeleteLink(ctx, linkID))
}

func (l *LinkStore) checkUser(userID string) error {
	if userID != l.Session.UserID() {
		return fmt.Errorf("linksdk: session belongs to %q, not %q", l.Session.UserID(), userID)
	}
	return nil
}

// translate maps the two distinguished service rejections onto the
// lifecycle errors. Everything else is left for the manager to report as a
// store failure.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case IsCode(err, ErrorCodeQuotaExceeded):
		return fmt.Errorf("%w: %w", lifecycle.ErrQuotaExceeded, err)
	case IsCode(err, ErrorCodeNotFound):
		return fmt.Errorf("%w: %w", lifecycle.ErrLinkNotFound, err)
	default:
		return err
	}
}

func toLifecycle(userID string, l Link) lifecycle.Link {
	return lifecycle.Link{
		ID:          l.ID,
		InviterID:   userID,
		InviterName: l.InviterName,
		InviteeName: l.InviteeName,
		URL:         l.URL,
		CreatedAt:   l.CreatedAt,
	}
}
