package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

var ErrNoVerifierKeys = errors.New("one of AUTH_JWKS_URL or AUTH_PUBLIC_KEY_FILE must be set")

type Config struct {
	DatabaseFile  string `env:"INVITES_DATABASE_FILE"   envDefault:"invites.db"`
	PublicBaseURL string `env:"INVITES_PUBLIC_BASE_URL" envDefault:"http://localhost:5173"`

	// Tokens are issued by the auth service; this service only verifies them.
	Issuer              string        `env:"AUTH_ISSUER"                envDefault:"bartab-auth"`
	JWKSURL             string        `env:"AUTH_JWKS_URL"`
	PublicKeyFile       string        `env:"AUTH_PUBLIC_KEY_FILE"`
	KeyID               string        `env:"AUTH_KEY_ID"                envDefault:"default"`
	JWKSRefreshInterval time.Duration `env:"AUTH_JWKS_REFRESH_INTERVAL" envDefault:"15m"`

	WelcomeCacheTTL time.Duration `env:"WELCOME_CACHE_TTL" envDefault:"1m"`

	Env                 string        `env:"ENV"                   envDefault:"dev"`
	LogLevel            string        `env:"LOG_LEVEL"             envDefault:"info"`
	LogFormat           string        `env:"LOG_FORMAT"            envDefault:"json"`
	Port                int           `env:"PORT"                  envDefault:"8081"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.JWKSURL == "" && c.PublicKeyFile == "":
		return ErrNoVerifierKeys
	case c.JWKSURL != "" && c.PublicKeyFile != "":
		return errors.New("AUTH_JWKS_URL and AUTH_PUBLIC_KEY_FILE are mutually exclusive")
	case c.PublicBaseURL == "":
		return errors.New("INVITES_PUBLIC_BASE_URL must not be empty")
	}
	return nil
}
