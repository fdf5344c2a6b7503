package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/invitelinks/internal/invites/domain"
	"github.com/aussiebroadwan/invitelinks/internal/invites/store"
	"github.com/aussiebroadwan/invitelinks/pkg/slogx"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/jonboulle/clockwork"
)

const maxCachedCodes = 10000

var (
	ErrInvalidCode          = errors.New("invitation code is required")
	ErrInvalidRedeemRequest = errors.New("invitation code and user id are required")
	ErrLinkExpired          = errors.New("invitation link has expired")
	ErrLinkAlreadyUsed      = errors.New("invitation link has already been used")
)

// WelcomeService resolves shareable codes for invitees and records their
// redemption once they register.
type WelcomeService struct {
	Store store.Store
	Clock clockwork.Clock

	ttl   time.Duration
	cache *ristretto.Cache[string, domain.Link]
}

// NewWelcomeService builds the service. A ttl of zero or less disables the
// code cache.
func NewWelcomeService(st store.Store, clock clockwork.Clock, ttl time.Duration) (*WelcomeService, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &WelcomeService{Store: st, Clock: clock, ttl: ttl}
	if ttl <= 0 {
		return s, nil
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, domain.Link]{
		NumCounters: maxCachedCodes * 10,
		MaxCost:     maxCachedCodes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	s.cache = c
	return s, nil
}

// Close releases the cache.
func (s *WelcomeService) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// Forget drops code from the cache.
func (s *WelcomeService) Forget(code string) {
	if s.cache == nil {
		return
	}
	s.cache.Del(code)
	s.cache.Wait()
}

// Resolve returns the welcome view for code. Expiry is evaluated against the
// service clock on every call, including cache hits.
func (s *WelcomeService) Resolve(ctx context.Context, code string) (domain.Welcome, error) {
	log := slogx.FromContext(ctx)

	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Welcome{}, ErrInvalidCode
	}

	link, err := s.lookup(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("welcome requested for unknown code")
			return domain.Welcome{}, ErrLinkNotFound
		}
		log.Error("failed to resolve invitation code", slog.Any("error", err))
		return domain.Welcome{}, err
	}

	if err := s.check(link); err != nil {
		log.Info("welcome requested for unusable link",
			slog.String("link_id", link.ID),
			slog.String("reason", err.Error()),
		)
		return domain.Welcome{}, err
	}
	return domain.WelcomeFor(link), nil
}

// Redeem marks the link behind code as used by userID. It reads the link
// inside the transaction and never trusts the cache.
func (s *WelcomeService) Redeem(ctx context.Context, code, userID string) (domain.Welcome, error) {
	log := slogx.FromContext(ctx)

	code = strings.TrimSpace(code)
	userID = strings.TrimSpace(userID)
	if code == "" || userID == "" {
		return domain.Welcome{}, ErrInvalidRedeemRequest
	}

	var link domain.Link
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		link, err = tx.Links().GetLinkByCode(ctx, code)
		if err != nil {
			return err
		}
		if err := s.check(link); err != nil {
			return err
		}

		now := s.Clock.Now().UTC()
		link.RedeemedBy = userID
		link.RedeemedAt = &now
		return tx.Links().MarkLinkRedeemed(ctx, link)
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		// Lost a race with another redemption.
		err = ErrLinkAlreadyUsed
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Warn("redeem attempted with unknown code")
		return domain.Welcome{}, ErrLinkNotFound
	case errors.Is(err, ErrLinkAlreadyUsed), errors.Is(err, ErrLinkExpired):
		log.Warn("redeem attempted with unusable link",
			slog.String("link_id", link.ID),
			slog.String("reason", err.Error()),
		)
		return domain.Welcome{}, err
	case err != nil:
		log.Error("failed to redeem invitation link", slog.Any("error", err))
		return domain.Welcome{}, err
	}

	s.Forget(code)

	log.Info("invitation link redeemed",
		slog.String("link_id", link.ID),
		slog.String("inviter_id", link.InviterID),
		slog.String("redeemed_by", userID),
	)
	return domain.WelcomeFor(link), nil
}

func (s *WelcomeService) lookup(ctx context.Context, code string) (domain.Link, error) {
	if s.cache != nil {
		if link, ok := s.cache.Get(code); ok {
			return link, nil
		}
	}

	link, err := s.Store.Links().GetLinkByCode(ctx, code)
	if err != nil {
		return domain.Link{}, err
	}

	if s.cache != nil && !link.Redeemed() {
		s.cache.SetWithTTL(code, link, 1, s.ttl)
		s.cache.Wait()
	}
	return link, nil
}

func (s *WelcomeService) check(link domain.Link) error {
	if link.IsExpired(s.Clock.Now()) {
		return ErrLinkExpired
	}
	if link.Redeemed() {
		return ErrLinkAlreadyUsed
	}
	return nil
}
