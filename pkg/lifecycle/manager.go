package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"github.com/aussiebroadwan/invitelinks/pkg/policy"
)

// Manager coordinates one user's invitation links against a LinkStore.
type Manager struct {
	store     LinkStore
	userID    string
	clock     clockwork.Clock
	clipboard Clipboard
	logger    *slog.Logger

	mu sync.Mutex
	// gen advances on every list request and every invalidation. A list
	// response is cached only when gen has not moved since it was issued.
	gen   uint64
	cache *Snapshot
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the time source used for expiry annotation.
func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithClipboard sets the collaborator used by CopyShareableURL.
func WithClipboard(c Clipboard) Option {
	return func(m *Manager) { m.clipboard = c }
}

// WithLogger sets the logger used to report collaborator failures.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// New returns a Manager for userID backed by store.
func New(store LinkStore, userID string, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		userID: userID,
		clock:  clockwork.NewRealClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// UserID returns the user whose links this manager handles.
func (m *Manager) UserID() string { return m.userID }

// Cached returns the last snapshot applied to the cache, if any. Callers use
// it as a fallback when ListLinks fails.
func (m *Manager) Cached() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cache == nil {
		return Snapshot{}, false
	}
	return m.cache.clone(), true
}

// ListLinks fetches the user's links, sorts them most recent first and
// annotates them with expiry and remaining quota.
//
// The result replaces the cache unless the request was superseded by a later
// list, a successful create or revoke, or the caller's context was cancelled
// before the response arrived. On failure the cache is left untouched and the
// error matches ErrStoreUnavailable.
func (m *Manager) ListLinks(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	links, err := m.store.List(ctx, m.userID)
	if err != nil {
		m.logger.WarnContext(ctx, "failed to list invitation links",
			slog.String("user_id", m.userID),
			slog.Any("error", err),
		)
		return Snapshot{}, fmt.Errorf("%w: list: %w", ErrStoreUnavailable, err)
	}

	snap := m.snapshot(links)

	m.mu.Lock()
	if gen == m.gen && ctx.Err() == nil {
		cached := snap.clone()
		m.cache = &cached
	}
	m.mu.Unlock()

	return snap, nil
}

// CreateLink validates inviteeName, checks the quota against the most recent
// snapshot (fetching one if nothing is cached) and asks the store to create
// the link. A quota rejection from the store is reported as ErrQuotaExceeded
// even if the local check passed.
func (m *Manager) CreateLink(ctx context.Context, inviteeName string) (Created, error) {
	name := strings.TrimSpace(inviteeName)
	if name == "" || utf8.RuneCountInString(name) > policy.MaxInviteeNameLength {
		return Created{}, ErrInvalidName
	}

	snap, err := m.current(ctx)
	if err != nil {
		return Created{}, err
	}
	count := len(snap.Links)
	if !policy.CanCreate(count) {
		return Created{}, ErrQuotaExceeded
	}

	link, err := m.store.Create(ctx, m.userID, name)
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			m.logger.InfoContext(ctx, "store rejected invitation link over quota",
				slog.String("user_id", m.userID),
				slog.Int("cached_count", count),
			)
			return Created{}, ErrQuotaExceeded
		}
		m.logger.WarnContext(ctx, "failed to create invitation link",
			slog.String("user_id", m.userID),
			slog.Any("error", err),
		)
		return Created{}, fmt.Errorf("%w: create: %w", ErrStoreUnavailable, err)
	}

	m.invalidate()

	return Created{
		Link:      annotate(link, m.clock.Now()),
		Remaining: policy.Remaining(count + 1),
	}, nil
}

// RevokeLink deletes linkID from the user's live set.
//
// The id must appear in the cached snapshot. When nothing is cached a fresh
// snapshot is fetched first; a cached snapshot is never refreshed here, so a
// link created elsewhere since the last list is reported as ErrLinkNotFound
// without calling the store.
func (m *Manager) RevokeLink(ctx context.Context, linkID string) error {
	snap, err := m.current(ctx)
	if err != nil {
		return err
	}
	if _, ok := snap.Find(linkID); !ok {
		return ErrLinkNotFound
	}

	if err := m.store.Delete(ctx, m.userID, linkID); err != nil {
		if errors.Is(err, ErrLinkNotFound) {
			return ErrLinkNotFound
		}
		m.logger.WarnContext(ctx, "failed to revoke invitation link",
			slog.String("user_id", m.userID),
			slog.String("link_id", linkID),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: delete: %w", ErrStoreUnavailable, err)
	}

	m.invalidate()
	return nil
}

// CopyShareableURL hands the link's URL to the clipboard. Expired links are
// refused. Expiry is checked against the annotation and the current time, so
// a link annotated from an old snapshot cannot slip through.
func (m *Manager) CopyShareableURL(ctx context.Context, link AnnotatedLink) error {
	if link.Expired || policy.IsExpired(link.CreatedAt, m.clock.Now()) {
		return ErrLinkExpired
	}
	if m.clipboard == nil {
		return ErrNoClipboard
	}
	if err := m.clipboard.Copy(ctx, link.URL); err != nil {
		return fmt.Errorf("lifecycle: copy link url: %w", err)
	}
	return nil
}

// current returns the cached snapshot or fetches one.
func (m *Manager) current(ctx context.Context) (Snapshot, error) {
	if snap, ok := m.Cached(); ok {
		return snap, nil
	}
	return m.ListLinks(ctx)
}

func (m *Manager) invalidate() {
	m.mu.Lock()
	m.gen++
	m.cache = nil
	m.mu.Unlock()
}

func (m *Manager) snapshot(links []Link) Snapshot {
	now := m.clock.Now()

	sorted := slices.Clone(links)
	slices.SortStableFunc(sorted, func(a, b Link) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	annotated := make([]AnnotatedLink, len(sorted))
	for i, l := range sorted {
		annotated[i] = annotate(l, now)
	}

	return Snapshot{
		Links:     annotated,
		Remaining: policy.Remaining(len(annotated)),
		FetchedAt: now,
	}
}
