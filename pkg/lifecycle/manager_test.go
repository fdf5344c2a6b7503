package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/invitelinks/pkg/policy"
)

const testUser = "user-1"

var errBoom = errors.New("connection reset")

// memStore is an in-memory LinkStore that enforces the quota itself.
type memStore struct {
	clock clockwork.Clock

	mu    sync.Mutex
	links map[string][]Link
	seq   int

	listCalls   int
	createCalls int
	deleteCalls int

	listErr   error
	createErr error
	deleteErr error

	// beforeListReturn runs after the result has been captured and before it
	// is returned, which lets tests hold a response in flight.
	beforeListReturn func()
}

func newMemStore(clock clockwork.Clock) *memStore {
	return &memStore{clock: clock, links: make(map[string][]Link)}
}

func (s *memStore) seed(userID, inviteeName string, createdAt time.Time) Link {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	l := Link{
		ID:          fmt.Sprintf("link-%02d", s.seq),
		InviterID:   userID,
		InviterName: "Inviter",
		InviteeName: inviteeName,
		URL:         fmt.Sprintf("https://invites.test/welcome?code=%02d", s.seq),
		CreatedAt:   createdAt,
	}
	s.links[userID] = append(s.links[userID], l)
	return l
}

// holdFirstList parks the next List call after it has captured its result
// until release is closed. Later calls pass straight through, so a newer
// request can complete while the first is still in flight.
func (s *memStore) holdFirstList() (entered chan struct{}, release chan struct{}) {
	entered = make(chan struct{})
	release = make(chan struct{})

	s.mu.Lock()
	defer s.mu.Unlock()
	held := false
	s.beforeListReturn = func() {
		s.mu.Lock()
		first := !held
		held = true
		s.mu.Unlock()

		if first {
			close(entered)
			<-release
		}
	}
	return entered, release
}

func (s *memStore) List(_ context.Context, userID string) ([]Link, error) {
	s.mu.Lock()
	s.listCalls++
	if s.listErr != nil {
		s.mu.Unlock()
		return nil, s.listErr
	}
	out := append([]Link(nil), s.links[userID]...)
	hook := s.beforeListReturn
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (s *memStore) Create(_ context.Context, userID, inviteeName string) (Link, error) {
	s.mu.Lock()
	s.createCalls++
	if s.createErr != nil {
		s.mu.Unlock()
		return Link{}, s.createErr
	}
	if len(s.links[userID]) >= policy.MaxLinks {
		s.mu.Unlock()
		return Link{}, fmt.Errorf("store: %w", ErrQuotaExceeded)
	}
	s.mu.Unlock()

	return s.seed(userID, inviteeName, s.clock.Now()), nil
}

func (s *memStore) Delete(_ context.Context, userID, linkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteCalls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	links := s.links[userID]
	for i, l := range links {
		if l.ID == linkID {
			s.links[userID] = append(links[:i:i], links[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("store: %w", ErrLinkNotFound)
}

func (s *memStore) calls() (list, create, del int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls, s.createCalls, s.deleteCalls
}

type recordingClipboard struct {
	copied []string
	err    error
}

func (c *recordingClipboard) Copy(_ context.Context, text string) error {
	if c.err != nil {
		return c.err
	}
	c.copied = append(c.copied, text)
	return nil
}

func newTestManager(t *testing.T) (*Manager, *memStore, *clockwork.FakeClock) {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	store := newMemStore(clock)
	return New(store, testUser, WithClock(clock)), store, clock
}

func linkIDs(snap Snapshot) []string {
	ids := make([]string, len(snap.Links))
	for i, l := range snap.Links {
		ids[i] = l.ID
	}
	return ids
}

func TestListLinksOrdersMostRecentFirst(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	permutations := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{2, 0, 3, 1},
		{1, 3, 0, 2},
	}

	for _, perm := range permutations {
		t.Run(fmt.Sprint(perm), func(t *testing.T) {
			m, store, _ := newTestManager(t)
			for _, offset := range perm {
				store.seed(testUser, fmt.Sprintf("guest-%d", offset), base.Add(time.Duration(offset)*time.Hour))
			}

			snap, err := m.ListLinks(context.Background())
			require.NoError(t, err)
			require.Len(t, snap.Links, len(perm))

			for i := 1; i < len(snap.Links); i++ {
				require.True(t, snap.Links[i-1].CreatedAt.After(snap.Links[i].CreatedAt),
					"links %d and %d out of order", i-1, i)
			}
			require.Equal(t, "guest-3", snap.Links[0].InviteeName)
			require.Equal(t, policy.MaxLinks-len(perm), snap.Remaining)
		})
	}

	t.Run("ties keep store order", func(t *testing.T) {
		m, store, _ := newTestManager(t)
		first := store.seed(testUser, "first", base)
		second := store.seed(testUser, "second", base)
		newest := store.seed(testUser, "newest", base.Add(time.Minute))

		snap, err := m.ListLinks(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{newest.ID, first.ID, second.ID}, linkIDs(snap))
	})
}

func TestListLinksAnnotatesExpiry(t *testing.T) {
	t.Parallel()

	m, store, clock := newTestManager(t)
	now := clock.Now()

	fresh := store.seed(testUser, "fresh", now.Add(-time.Hour))
	edge := store.seed(testUser, "edge", now.Add(-policy.ValidityWindow))
	stale := store.seed(testUser, "stale", now.Add(-policy.ValidityWindow-time.Second))

	snap, err := m.ListLinks(context.Background())
	require.NoError(t, err)
	require.Equal(t, now, snap.FetchedAt)

	byID := map[string]AnnotatedLink{}
	for _, l := range snap.Links {
		byID[l.ID] = l
	}

	require.False(t, byID[fresh.ID].Expired)
	require.Equal(t, fresh.CreatedAt.Add(policy.ValidityWindow), byID[fresh.ID].ExpiresAt)
	require.False(t, byID[edge.ID].Expired)
	require.True(t, byID[stale.ID].Expired)
}

func TestListLinksFailureLeavesCache(t *testing.T) {
	t.Parallel()

	m, store, _ := newTestManager(t)
	ctx := context.Background()

	_, ok := m.Cached()
	require.False(t, ok)

	link := store.seed(testUser, "Bob", store.clock.Now())
	_, err := m.ListLinks(ctx)
	require.NoError(t, err)

	store.listErr = errBoom
	_, err = m.ListLinks(ctx)
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.ErrorIs(t, err, errBoom)

	cached, ok := m.Cached()
	require.True(t, ok)
	require.Equal(t, []string{link.ID}, linkIDs(cached))
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	m, store, _ := newTestManager(t)
	store.seed(testUser, "Bob", store.clock.Now())

	snap, err := m.ListLinks(context.Background())
	require.NoError(t, err)
	snap.Links[0].InviteeName = "Mallory"

	cached, ok := m.Cached()
	require.True(t, ok)
	require.Equal(t, "Bob", cached.Links[0].InviteeName)

	cached.Links[0].InviteeName = "Eve"
	again, _ := m.Cached()
	require.Equal(t, "Bob", again.Links[0].InviteeName)
}

func TestSupersededListIsNotCached(t *testing.T) {
	t.Parallel()

	t.Run("by a newer list", func(t *testing.T) {
		m, store, _ := newTestManager(t)

		entered, release := store.holdFirstList()

		type result struct {
			snap Snapshot
			err  error
		}
		done := make(chan result)
		go func() {
			snap, err := m.ListLinks(context.Background())
			done <- result{snap, err}
		}()
		<-entered

		newer := store.seed(testUser, "Bob", store.clock.Now())
		latest, err := m.ListLinks(context.Background())
		require.NoError(t, err)
		require.Len(t, latest.Links, 1)

		close(release)
		stale := <-done
		require.NoError(t, stale.err)
		require.Empty(t, stale.snap.Links)

		cached, ok := m.Cached()
		require.True(t, ok)
		require.Equal(t, []string{newer.ID}, linkIDs(cached))
	})

	t.Run("by a successful create", func(t *testing.T) {
		m, store, _ := newTestManager(t)
		_, err := m.ListLinks(context.Background())
		require.NoError(t, err)

		entered, release := store.holdFirstList()

		done := make(chan error)
		go func() {
			_, err := m.ListLinks(context.Background())
			done <- err
		}()
		<-entered

		_, err = m.CreateLink(context.Background(), "Carol")
		require.NoError(t, err)

		close(release)
		require.NoError(t, <-done)

		_, ok := m.Cached()
		require.False(t, ok, "a response issued before the create must not be cached")
	})

	t.Run("by cancellation", func(t *testing.T) {
		m, store, _ := newTestManager(t)
		store.seed(testUser, "Bob", store.clock.Now())

		ctx, cancel := context.WithCancel(context.Background())
		store.beforeListReturn = cancel

		_, err := m.ListLinks(ctx)
		require.NoError(t, err)

		_, ok := m.Cached()
		require.False(t, ok)
	})
}

func TestCreateLinkValidatesName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "  \t\n "},
		{"too long", strings.Repeat("a", policy.MaxInviteeNameLength+1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, store, _ := newTestManager(t)

			_, err := m.CreateLink(context.Background(), tc.input)
			require.ErrorIs(t, err, ErrInvalidName)

			list, create, _ := store.calls()
			require.Zero(t, list)
			require.Zero(t, create)
		})
	}
}

func TestCreateLink(t *testing.T) {
	t.Parallel()

	m, store, clock := newTestManager(t)
	ctx := context.Background()

	created, err := m.CreateLink(ctx, "  Alice  ")
	require.NoError(t, err)
	require.Equal(t, "Alice", created.Link.InviteeName)
	require.Equal(t, clock.Now(), created.Link.CreatedAt)
	require.Equal(t, clock.Now().Add(policy.ValidityWindow), created.Link.ExpiresAt)
	require.False(t, created.Link.Expired)
	require.Equal(t, policy.MaxLinks-1, created.Remaining)

	list, create, _ := store.calls()
	require.Equal(t, 1, list, "nothing was cached so a snapshot is fetched for the quota check")
	require.Equal(t, 1, create)

	_, ok := m.Cached()
	require.False(t, ok, "create invalidates the cache")

	name := strings.Repeat("é", policy.MaxInviteeNameLength)
	_, err = m.CreateLink(ctx, name)
	require.NoError(t, err, "length is counted in characters")
}

func TestCreateLinkQuotaExceededLocally(t *testing.T) {
	t.Parallel()

	m, store, _ := newTestManager(t)
	ctx := context.Background()

	for i := range policy.MaxLinks {
		_, err := m.CreateLink(ctx, fmt.Sprintf("guest-%d", i))
		require.NoError(t, err)
	}

	snap, err := m.ListLinks(ctx)
	require.NoError(t, err)
	require.Zero(t, snap.Remaining)

	_, err = m.CreateLink(ctx, "one too many")
	require.ErrorIs(t, err, ErrQuotaExceeded)

	_, create, _ := store.calls()
	require.Equal(t, policy.MaxLinks, create, "the store is not called for the sixth link")
}

func TestCreateLinkStoreQuotaIsAuthoritative(t *testing.T) {
	t.Parallel()

	m, store, _ := newTestManager(t)
	ctx := context.Background()

	for i := range policy.MaxLinks - 1 {
		store.seed(testUser, fmt.Sprintf("guest-%d", i), store.clock.Now())
	}
	before, err := m.ListLinks(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, before.Remaining)

	// Another session takes the last slot.
	store.seed(testUser, "other session", store.clock.Now())

	_, err = m.CreateLink(ctx, "Dave")
	require.ErrorIs(t, err, ErrQuotaExceeded)
	require.NotErrorIs(t, err, ErrStoreUnavailable)

	cached, ok := m.Cached()
	require.True(t, ok, "a store rejection leaves the cache in place")
	require.Equal(t, linkIDs(before), linkIDs(cached))
}

func TestCreateLinkStoreFailure(t *testing.T) {
	t.Parallel()

	m, store, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.ListLinks(ctx)
	require.NoError(t, err)

	store.createErr = errBoom
	_, err = m.CreateLink(ctx, "Erin")
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.ErrorIs(t, err, errBoom)

	_, ok := m.Cached()
	require.True(t, ok)
}

func TestRevokeLink(t *testing.T) {
	t.Parallel()

	m, store, _ := newTestManager(t)
	ctx := context.Background()

	keep := store.seed(testUser, "keep", store.clock.Now())
	drop := store.seed(testUser, "drop", store.clock.Now().Add(time.Minute))

	before, err := m.ListLinks(ctx)
	require.NoError(t, err)

	require.NoError(t, m.RevokeLink(ctx, drop.ID))

	_, ok := m.Cached()
	require.False(t, ok, "revoke invalidates the cache")

	after, err := m.ListLinks(ctx)
	require.NoError(t, err)
	require.Equal(t, before.Remaining+1, after.Remaining)
	require.Equal(t, []string{keep.ID}, linkIDs(after))

	t.Run("twice reports not found", func(t *testing.T) {
		err := m.RevokeLink(ctx, drop.ID)
		require.ErrorIs(t, err, ErrLinkNotFound)

		_, _, del := store.calls()
		require.Equal(t, 1, del)
	})
}

func TestRevokeLinkNotInSnapshot(t *testing.T) {
	t.Parallel()

	m, store, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.ListLinks(ctx)
	require.NoError(t, err)

	// Created by another session after the snapshot was taken.
	elsewhere := store.seed(testUser, "elsewhere", store.clock.Now())

	require.ErrorIs(t, m.RevokeLink(ctx, "missing"), ErrLinkNotFound)
	require.ErrorIs(t, m.RevokeLink(ctx, elsewhere.ID), ErrLinkNotFound)

	list, _, del := store.calls()
	require.Equal(t, 1, list, "a cached snapshot is not refreshed before revoking")
	require.Zero(t, del)
}

func TestRevokeLinkFetchesWhenNothingCached(t *testing.T) {
	t.Parallel()

	m, store, _ := newTestManager(t)
	ctx := context.Background()

	link := store.seed(testUser, "remote", store.clock.Now())

	require.NoError(t, m.RevokeLink(ctx, link.ID))

	list, _, del := store.calls()
	require.Equal(t, 1, list)
	require.Equal(t, 1, del)

	require.ErrorIs(t, m.RevokeLink(ctx, "never-existed"), ErrLinkNotFound)
	_, _, del = store.calls()
	require.Equal(t, 1, del)
}

func TestRevokeLinkStoreRejections(t *testing.T) {
	t.Parallel()

	t.Run("removed by another session", func(t *testing.T) {
		m, store, _ := newTestManager(t)
		ctx := context.Background()

		link := store.seed(testUser, "gone", store.clock.Now())
		_, err := m.ListLinks(ctx)
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, testUser, link.ID))

		err = m.RevokeLink(ctx, link.ID)
		require.ErrorIs(t, err, ErrLinkNotFound)
		require.NotErrorIs(t, err, ErrStoreUnavailable)

		cached, ok := m.Cached()
		require.True(t, ok)
		require.Equal(t, []string{link.ID}, linkIDs(cached))
	})

	t.Run("transport failure", func(t *testing.T) {
		m, store, _ := newTestManager(t)
		ctx := context.Background()

		link := store.seed(testUser, "kept", store.clock.Now())
		_, err := m.ListLinks(ctx)
		require.NoError(t, err)

		store.deleteErr = errBoom
		err = m.RevokeLink(ctx, link.ID)
		require.ErrorIs(t, err, ErrStoreUnavailable)

		cached, ok := m.Cached()
		require.True(t, ok)
		require.Equal(t, []string{link.ID}, linkIDs(cached))
	})

	t.Run("fetch failure", func(t *testing.T) {
		m, store, _ := newTestManager(t)
		store.listErr = errBoom

		err := m.RevokeLink(context.Background(), "any")
		require.ErrorIs(t, err, ErrStoreUnavailable)

		_, _, del := store.calls()
		require.Zero(t, del)
	})
}

func TestCopyShareableURL(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	clip := &recordingClipboard{}
	m := New(newMemStore(clock), testUser, WithClock(clock), WithClipboard(clip))
	ctx := context.Background()

	active := annotate(Link{ID: "a", URL: "https://invites.test/welcome?code=a", CreatedAt: clock.Now().Add(-time.Hour)}, clock.Now())
	require.NoError(t, m.CopyShareableURL(ctx, active))
	require.Equal(t, []string{active.URL}, clip.copied)

	expired := annotate(Link{ID: "b", URL: "https://invites.test/welcome?code=b", CreatedAt: clock.Now().Add(-8 * 24 * time.Hour)}, clock.Now())
	require.True(t, expired.Expired)
	require.ErrorIs(t, m.CopyShareableURL(ctx, expired), ErrLinkExpired)

	stale := expired
	stale.Expired = false
	require.ErrorIs(t, m.CopyShareableURL(ctx, stale), ErrLinkExpired, "expiry is re-checked against the clock")

	require.Len(t, clip.copied, 1)

	clip.err = errBoom
	require.ErrorIs(t, m.CopyShareableURL(ctx, active), errBoom)

	bare := New(newMemStore(clock), testUser, WithClock(clock))
	require.ErrorIs(t, bare.CopyShareableURL(ctx, active), ErrNoClipboard)
}

func TestAliceLifecycle(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	store := newMemStore(clock)
	clip := &recordingClipboard{}
	m := New(store, testUser, WithClock(clock), WithClipboard(clip))
	ctx := context.Background()

	snap, err := m.ListLinks(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, snap.Remaining)

	created, err := m.CreateLink(ctx, "Alice")
	require.NoError(t, err)
	require.Equal(t, 4, created.Remaining)

	snap, err = m.ListLinks(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Links, 1)
	require.Equal(t, 4, snap.Remaining)
	require.False(t, snap.Links[0].Expired)
	require.NoError(t, m.CopyShareableURL(ctx, snap.Links[0]))

	clock.Advance(8 * 24 * time.Hour)

	snap, err = m.ListLinks(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Links, 1)
	alice := snap.Links[0]
	require.Equal(t, created.Link.ID, alice.ID)
	require.True(t, alice.Expired)

	require.ErrorIs(t, m.CopyShareableURL(ctx, alice), ErrLinkExpired)

	require.NoError(t, m.RevokeLink(ctx, alice.ID))

	snap, err = m.ListLinks(ctx)
	require.NoError(t, err)
	require.Empty(t, snap.Links)
	require.Equal(t, 5, snap.Remaining)
	require.Len(t, clip.copied, 1)
}
