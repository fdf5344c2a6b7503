package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/invitelinks/internal/invites/store/drivers/sqlite"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *sqlite.Store
	clock   *clockwork.FakeClock
	links   *LinkService
	welcome *WelcomeService
}

func newFixture(t *testing.T, cacheTTL time.Duration) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	clock := clockwork.NewFakeClockAt(epoch)

	welcome, err := NewWelcomeService(st, clock, cacheTTL)
	require.NoError(t, err)
	t.Cleanup(welcome.Close)

	return &fixture{
		store:   st,
		clock:   clock,
		links:   NewLinkService(st, clock, "http://localhost:5173/", welcome),
		welcome: welcome,
	}
}

var alice = Inviter{ID: "alice-id", Name: "Alice"}

func bg() context.Context { return context.Background() }
