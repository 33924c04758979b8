// internal/config/config.go
//
// Runtime configuration for the voiceguess server and console.
// Values come from the process environment, after an optional .env file
// has been loaded for local development.

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable of the program.
type Config struct {
	Port     string `env:"PORT"      envDefault:"5175"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	ClientOrigins []string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173" envSeparator:","`

	SessionSecret string        `env:"SESSION_SECRET" envDefault:"dev_secret_change_me"`
	SessionTTL    time.Duration `env:"SESSION_TTL"    envDefault:"12h"`
	CookieName    string        `env:"COOKIE_NAME"    envDefault:"voiceguess_session"`
	CookieSecure  bool          `env:"COOKIE_SECURE"  envDefault:"false"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"`
	SQLiteDSN   string `env:"SQLITE_DSN"   envDefault:"file:voiceguess?mode=memory&cache=shared"`

	ListenRetryDelay time.Duration `env:"LISTEN_RETRY_DELAY" envDefault:"500ms"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT"    envDefault:"10s"`
}

// Load reads .env (when present) and parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

// Validate rejects configurations the program cannot run with.
func (c Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case "memory", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER: unknown driver %q", c.StoreDriver))
	}
	if c.StoreDriver == "sqlite" && c.SQLiteDSN == "" {
		errs = append(errs, errors.New("SQLITE_DSN: required for the sqlite driver"))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET: must not be empty"))
	}
	for name, d := range map[string]time.Duration{
		"SESSION_TTL":        c.SessionTTL,
		"LISTEN_RETRY_DELAY": c.ListenRetryDelay,
		"REQUEST_TIMEOUT":    c.RequestTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive, got %s", name, d))
		}
	}
	return errors.Join(errs...)
}
