package service

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/invitelinks/pkg/jwtx"
)

const keyRefreshTimeout = 10 * time.Second

// KeyRefreshService periodically reloads the verifier key set from the auth
// service's JWKS endpoint so rotated signing keys are picked up without a
// restart.
type KeyRefreshService struct {
	Keys     *jwtx.KeySet
	URL      string
	Client   *http.Client
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewKeyRefreshService creates the worker. If interval is 0 or negative it
// defaults to 15 minutes.
func NewKeyRefreshService(keys *jwtx.KeySet, url string, client *http.Client, logger *slog.Logger, interval time.Duration) *KeyRefreshService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if client == nil {
		client = &http.Client{Timeout: keyRefreshTimeout}
	}
	return &KeyRefreshService{
		Keys:     keys,
		URL:      url,
		Client:   client,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background worker. It is non-blocking; call Stop to
// shut it down.
func (s *KeyRefreshService) Start() {
	go s.run()
	s.Logger.Info("key refresh service started", "interval", s.Interval, "jwks_url", s.URL)
}

// Stop shuts the worker down and waits for an in-flight refresh to finish.
func (s *KeyRefreshService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("key refresh service stopped")
}

// Refresh fetches the key set once. On failure the current keys stay in use.
func (s *KeyRefreshService) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, keyRefreshTimeout)
	defer cancel()

	jwks, err := jwtx.FetchJWKS(ctx, s.Client, s.URL)
	if err != nil {
		return err
	}
	n, err := s.Keys.ResetFromJWKS(jwks)
	if err != nil {
		return err
	}
	s.Logger.Debug("verifier keys refreshed", "keys", n)
	return nil
}

func (s *KeyRefreshService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Refresh(context.Background()); err != nil {
				s.Logger.Error("failed to refresh verifier keys", "error", err, "keys_in_use", s.Keys.Len())
			}
		case <-s.stopCh:
			return
		}
	}
}
