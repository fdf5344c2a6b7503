package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/aussiebroadwan/invitelinks/internal/invites/domain"
	"github.com/aussiebroadwan/invitelinks/internal/invites/store"
	"github.com/aussiebroadwan/invitelinks/pkg/idx"
	"github.com/aussiebroadwan/invitelinks/pkg/policy"
	"github.com/aussiebroadwan/invitelinks/pkg/slogx"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var (
	ErrInvalidInviteeName = errors.New("invitee name must be 1 to 255 characters")
	ErrQuotaExceeded      = errors.New("invitation link quota exceeded")
	ErrLinkNotFound       = errors.New("invitation link not found")
)

// Inviter identifies the authenticated member creating links.
type Inviter struct {
	ID   string
	Name string
}

// LinkService owns the authoritative set of invitation links per inviter.
type LinkService struct {
	Store store.Store
	Clock clockwork.Clock

	// BaseURL is the public frontend origin links point at.
	BaseURL string

	// Welcome, when set, has its cached codes dropped on revoke.
	Welcome *WelcomeService
}

func NewLinkService(st store.Store, clock clockwork.Clock, baseURL string, welcome *WelcomeService) *LinkService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LinkService{
		Store:   st,
		Clock:   clock,
		BaseURL: baseURL,
		Welcome: welcome,
	}
}

// ShareableURL builds the URL an invitee opens for code.
func ShareableURL(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/welcome?code=" + url.QueryEscape(code)
}

// NormalizeInviteeName trims name and checks it fits the stored column.
func NormalizeInviteeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > policy.MaxInviteeNameLength {
		return "", ErrInvalidInviteeName
	}
	return name, nil
}

// ListLinks returns the inviter's links, newest first.
func (s *LinkService) ListLinks(ctx context.Context, inviterID string) ([]domain.Link, error) {
	links, err := s.Store.Links().ListLinksByInviter(ctx, inviterID)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list invitation links", slog.Any("error", err))
		return nil, err
	}
	return links, nil
}

// CreateLink issues a new link for inviter. The quota check and the insert
// happen in one statement, so concurrent requests can never push an inviter
// past policy.MaxLinks.
func (s *LinkService) CreateLink(ctx context.Context, inviter Inviter, inviteeName string) (domain.Link, error) {
	log := slogx.FromContext(ctx)

	name, err := NormalizeInviteeName(inviteeName)
	if err != nil {
		log.Warn("rejected invitee name", slog.Int("length", utf8.RuneCountInString(inviteeName)))
		return domain.Link{}, err
	}

	now := s.Clock.Now().UTC()
	code := uuid.NewString()
	link := domain.Link{
		ID:          idx.NewAt(now).String(),
		InviterID:   inviter.ID,
		InviterName: inviter.Name,
		InviteeName: name,
		Code:        code,
		URL:         ShareableURL(s.BaseURL, code),
		CreatedAt:   now,
	}

	err = s.Store.Links().CreateLinkWithinQuota(ctx, link, policy.MaxLinks)
	switch {
	case errors.Is(err, store.ErrQuotaExceeded):
		log.Info("invitation link quota reached", slog.Int("max_links", policy.MaxLinks))
		return domain.Link{}, ErrQuotaExceeded
	case err != nil:
		log.Error("failed to create invitation link", slog.Any("error", err))
		return domain.Link{}, err
	}

	log.Info("invitation link created",
		slog.String("link_id", link.ID),
		slog.Time("expires_at", link.ExpiresAt()),
	)
	return link, nil
}

// DeleteLink revokes one of the inviter's links. Links that belong to other
// inviters are indistinguishable from missing ones.
func (s *LinkService) DeleteLink(ctx context.Context, inviterID, linkID string) error {
	log := slogx.FromContext(ctx)

	if _, err := idx.Parse(linkID); err != nil {
		log.Debug("revoke with malformed link id", slog.String("link_id", linkID))
		return ErrLinkNotFound
	}

	var code string
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		link, err := tx.Links().GetLinkByInviterAndID(ctx, inviterID, linkID)
		if err != nil {
			return err
		}
		code = link.Code
		return tx.Links().DeleteLink(ctx, inviterID, linkID)
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Warn("revoke of unknown invitation link", slog.String("link_id", linkID))
		return ErrLinkNotFound
	case err != nil:
		log.Error("failed to revoke invitation link",
			slog.String("link_id", linkID),
			slog.Any("error", err),
		)
		return err
	}

	if s.Welcome != nil {
		s.Welcome.Forget(code)
	}

	log.Info("invitation link revoked", slog.String("link_id", linkID))
	return nil
}
