package sqlite

import (
	"context"

	"github.com/aussiebroadwan/invitelinks/internal/invites/domain"
	"github.com/aussiebroadwan/invitelinks/internal/invites/store"
	"github.com/aussiebroadwan/invitelinks/internal/invites/store/drivers/sqlite/gen"
)

type linksRepo struct {
	q *gen.Queries
}

func (r *linksRepo) ListLinksByInviter(ctx context.Context, inviterID string) ([]domain.Link, error) {
	rows, err := r.q.ListLinksByInviter(ctx, inviterID)
	if err != nil {
		return nil, err
	}
	links := make([]domain.Link, 0, len(rows))
	for _, row := range rows {
		links = append(links, mapLink(row))
	}
	return links, nil
}

func (r *linksRepo) GetLinkByInviterAndID(ctx context.Context, inviterID, linkID string) (domain.Link, error) {
	row, err := r.q.GetLinkByInviterAndID(ctx, gen.GetLinkByInviterAndIDParams{
		ID:        linkID,
		InviterID: inviterID,
	})
	if err != nil {
		return domain.Link{}, mapNotFound(err)
	}
	return mapLink(row), nil
}

func (r *linksRepo) CreateLinkWithinQuota(ctx context.Context, l domain.Link, maxLinks int) error {
	n, err := r.q.CreateLinkWithinQuota(ctx, gen.CreateLinkWithinQuotaParams{
		ID:          l.ID,
		InviterID:   l.InviterID,
		InviterName: l.InviterName,
		InviteeName: l.InviteeName,
		Code:        l.Code,
		Url:         l.URL,
		CreatedAt:   l.CreatedAt.UTC(),
		MaxLinks:    int64(maxLinks),
	})
	if err != nil {
		return mapUniqueViolation(err)
	}
	if n == 0 {
		return store.ErrQuotaExceeded
	}
	return nil
}

func (r *linksRepo) GetLinkByCode(ctx context.Context, code string) (domain.Link, error) {
	row, err := r.q.GetLinkByCode(ctx, code)
	if err != nil {
		return domain.Link{}, mapNotFound(err)
	}
	return mapLink(row), nil
}

func (r *linksRepo) DeleteLink(ctx context.Context, inviterID, linkID string) error {
	n, err := r.q.DeleteLinkByInviter(ctx, gen.DeleteLinkByInviterParams{
		ID:        linkID,
		InviterID: inviterID,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *linksRepo) MarkLinkRedeemed(ctx context.Context, l domain.Link) error {
	n, err := r.q.MarkLinkRedeemed(ctx, gen.MarkLinkRedeemedParams{
		RedeemedBy: mapStringNull(l.RedeemedBy),
		RedeemedAt: mapOptionalTime(l.RedeemedAt),
		ID:         l.ID,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}
