package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/invitelinks/internal/invites/service"
	"github.com/aussiebroadwan/invitelinks/pkg/cryptox"
	"github.com/aussiebroadwan/invitelinks/pkg/jwtx"
)

// InitVerifierKeys loads the keys access tokens are checked against.
//
// With AUTH_PUBLIC_KEY_FILE a single static Ed25519 key is trusted under
// AUTH_KEY_ID. With AUTH_JWKS_URL the auth service's key set is fetched now
// and the returned KeyRefreshService keeps it current; a failed first fetch
// is logged and left to the refresher, and /readyz reports not ready until
// keys arrive.
func InitVerifierKeys(ctx context.Context, cfg Config, logger *slog.Logger) (*jwtx.KeySet, *service.KeyRefreshService, error) {
	keys := jwtx.NewKeySet()

	if cfg.PublicKeyFile != "" {
		pemKey, err := os.ReadFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, nil, fmt.Errorf("read public key: %w", err)
		}
		pub, err := cryptox.ParseEd25519PublicKey(pemKey)
		if err != nil {
			return nil, nil, fmt.Errorf("parse public key: %w", err)
		}
		keys.Add(cfg.KeyID, pub)
		logger.Info("verifier key loaded from file", "kid", cfg.KeyID, "path", cfg.PublicKeyFile)
		return keys, nil, nil
	}

	refresher := service.NewKeyRefreshService(keys, cfg.JWKSURL, nil, logger, cfg.JWKSRefreshInterval)
	if err := refresher.Refresh(ctx); err != nil {
		logger.Warn("initial jwks fetch failed, will retry", "jwks_url", cfg.JWKSURL, "error", err)
	} else {
		logger.Info("verifier keys loaded from jwks", "jwks_url", cfg.JWKSURL, "keys", keys.Len())
	}
	return keys, refresher, nil
}
