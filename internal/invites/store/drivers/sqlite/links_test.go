package sqlite_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/invitelinks/internal/invites/domain"
	"github.com/aussiebroadwan/invitelinks/internal/invites/store"
	"github.com/aussiebroadwan/invitelinks/internal/invites/store/drivers/sqlite"
	"github.com/aussiebroadwan/invitelinks/pkg/idx"
	"github.com/aussiebroadwan/invitelinks/pkg/policy"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newLink(inviter, name string, at time.Time) domain.Link {
	id := idx.NewAt(at).String()
	return domain.Link{
		ID:          id,
		InviterID:   inviter,
		InviterName: "Alice",
		InviteeName: name,
		Code:        "code-" + id,
		URL:         "http://localhost:5173/welcome?code=code-" + id,
		CreatedAt:   at,
	}
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestLinksCreateAndList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := newLink("alice", "Bob", base)
	newer := newLink("alice", "Carol", base.Add(time.Hour))
	other := newLink("mallory", "Eve", base.Add(2*time.Hour))

	for _, l := range []domain.Link{older, newer, other} {
		require.NoError(t, s.Links().CreateLinkWithinQuota(ctx, l, policy.MaxLinks))
	}

	links, err := s.Links().ListLinksByInviter(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, links, 2)
	require.Equal(t, newer.ID, links[0].ID)
	require.Equal(t, older.ID, links[1].ID)

	got := links[1]
	require.Equal(t, "Bob", got.InviteeName)
	require.Equal(t, "Alice", got.InviterName)
	require.Equal(t, older.URL, got.URL)
	require.True(t, older.CreatedAt.Equal(got.CreatedAt))
	require.False(t, got.Redeemed())

	byID, err := s.Links().GetLinkByInviterAndID(ctx, "alice", older.ID)
	require.NoError(t, err)
	require.Equal(t, older.Code, byID.Code)

	_, err = s.Links().GetLinkByInviterAndID(ctx, "mallory", older.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	empty, err := s.Links().ListLinksByInviter(ctx, "nobody")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestLinksListBreaksTiesByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a := newLink("alice", "A", at)
	b := newLink("alice", "B", at)
	a.ID, b.ID = "01B", "01A"

	require.NoError(t, s.Links().CreateLinkWithinQuota(ctx, a, policy.MaxLinks))
	require.NoError(t, s.Links().CreateLinkWithinQuota(ctx, b, policy.MaxLinks))

	links, err := s.Links().ListLinksByInviter(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, []string{"01A", "01B"}, []string{links[0].ID, links[1].ID})
}

func TestLinksQuotaIsEnforcedByInsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := range policy.MaxLinks {
		l := newLink("alice", "Friend", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.Links().CreateLinkWithinQuota(ctx, l, policy.MaxLinks))
	}

	extra := newLink("alice", "One too many", base.Add(time.Hour))
	err := s.Links().CreateLinkWithinQuota(ctx, extra, policy.MaxLinks)
	require.ErrorIs(t, err, store.ErrQuotaExceeded)

	// Quota is per inviter.
	require.NoError(t, s.Links().CreateLinkWithinQuota(ctx, newLink("bob", "Friend", base), policy.MaxLinks))

	links, err := s.Links().ListLinksByInviter(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, links, policy.MaxLinks)
}

func TestLinksConcurrentCreatesNeverExceedQuota(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	const attempts = 12
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := newLink("alice", "Friend", base.Add(time.Duration(i)*time.Second))
			errs <- s.Links().CreateLinkWithinQuota(ctx, l, policy.MaxLinks)
		}()
	}
	wg.Wait()
	close(errs)

	var ok, rejected int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		default:
			require.ErrorIs(t, err, store.ErrQuotaExceeded)
			rejected++
		}
	}
	require.Equal(t, policy.MaxLinks, ok)
	require.Equal(t, attempts-policy.MaxLinks, rejected)
}

func TestLinksDuplicateCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := newLink("alice", "Bob", at)
	second := newLink("alice", "Carol", at.Add(time.Second))
	second.Code = first.Code

	require.NoError(t, s.Links().CreateLinkWithinQuota(ctx, first, policy.MaxLinks))
	err := s.Links().CreateLinkWithinQuota(ctx, second, policy.MaxLinks)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestLinksGetByCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	l := newLink("alice", "Bob", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, s.Links().CreateLinkWithinQuota(ctx, l, policy.MaxLinks))

	got, err := s.Links().GetLinkByCode(ctx, l.Code)
	require.NoError(t, err)
	require.Equal(t, l.ID, got.ID)

	_, err = s.Links().GetLinkByCode(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestLinksDeleteIsScopedToInviter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	l := newLink("alice", "Bob", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, s.Links().CreateLinkWithinQuota(ctx, l, policy.MaxLinks))

	err := s.Links().DeleteLink(ctx, "mallory", l.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Links().DeleteLink(ctx, "alice", l.ID))

	err = s.Links().DeleteLink(ctx, "alice", l.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Links().GetLinkByCode(ctx, l.Code)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestLinksMarkRedeemedOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := newLink("alice", "Bob", at)
	require.NoError(t, s.Links().CreateLinkWithinQuota(ctx, l, policy.MaxLinks))

	redeemedAt := at.Add(time.Hour)
	l.RedeemedBy = "bob"
	l.RedeemedAt = &redeemedAt
	require.NoError(t, s.Links().MarkLinkRedeemed(ctx, l))

	got, err := s.Links().GetLinkByCode(ctx, l.Code)
	require.NoError(t, err)
	require.True(t, got.Redeemed())
	require.Equal(t, "bob", got.RedeemedBy)
	require.True(t, redeemedAt.Equal(*got.RedeemedAt))

	l.RedeemedBy = "carol"
	err = s.Links().MarkLinkRedeemed(ctx, l)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	l := newLink("alice", "Bob", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Links().CreateLinkWithinQuota(ctx, l, policy.MaxLinks))
		return store.ErrNotFound
	})
	require.ErrorIs(t, err, store.ErrNotFound)

	links, err := s.Links().ListLinksByInviter(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, links)

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Links().CreateLinkWithinQuota(ctx, l, policy.MaxLinks)
	}))

	links, err = s.Links().ListLinksByInviter(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, links, 1)
}
