// Package config handles configuration for the development backend,
// including defaults, JSON overlay, environment and command-line flags.
package config

import "time"

// Config holds runtime settings for the development backend.
//
// Fields:
//   - EndpointAddrHTTP: bind address of the HTTP API.
//   - PublicURL: externally reachable base URL, used to build the provider sign-in URL.
//   - RedirectURL: where the provider sends the browser back with code and state.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - StateValidityDuration: how long a sign-in state and its code stay usable.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps all state in memory.
//   - LogLevel / LogBackend: see logging.New.
type Config struct {
	EndpointAddrHTTP             string        `env:"ENDPOINT_ADDR_HTTP"`
	PublicURL                    string        `env:"PUBLIC_URL"`
	RedirectURL                  string        `env:"REDIRECT_URL"`
	SecretKey                    string        `env:"SECRET_KEY"`
	AccessTokenValidityDuration  time.Duration `env:"ACCESS_TOKEN_VALIDITY"`
	RefreshTokenValidityDuration time.Duration `env:"REFRESH_TOKEN_VALIDITY"`
	StateValidityDuration        time.Duration `env:"STATE_VALIDITY"`
	DatabaseDSN                  string        `env:"DATABASE_DSN"`
	LogLevel                     string        `env:"LOG_LEVEL"`
	LogBackend                   string        `env:"LOG_BACKEND"`
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.PublicURL = "http://127.0.0.1:8080"
	c.RedirectURL = "http://127.0.0.1:9876/callback"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.StateValidityDuration = 10 * time.Minute
	c.LogLevel = "info"
	c.LogBackend = "zap"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
