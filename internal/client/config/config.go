package config

import "time"

// Config holds runtime settings for the terminal client.
//
// Fields:
//   - APIBaseURL: base URL of the blog backend.
//   - DatabasePath: SQLite file keeping the credential pair and session snapshot.
//   - CallbackAddr: host:port of the local listener receiving the OAuth redirect.
//   - RequestTimeout: bound on a single backend request.
//   - SignInTimeout: how long `login` waits for the redirect.
//   - LogLevel / LogBackend / LogFormat: see logging.New.
//   - BreakerTimeout / BreakerFailures: circuit breaker open period and the
//     number of consecutive failures that trip it.
type Config struct {
	APIBaseURL      string        `env:"API_BASE_URL"`
	DatabasePath    string        `env:"DATABASE_PATH"`
	CallbackAddr    string        `env:"CALLBACK_ADDR"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT"`
	SignInTimeout   time.Duration `env:"SIGNIN_TIMEOUT"`
	LogLevel        string        `env:"LOG_LEVEL"`
	LogBackend      string        `env:"LOG_BACKEND"`
	LogFormat       string        `env:"LOG_FORMAT"`
	BreakerTimeout  time.Duration `env:"BREAKER_TIMEOUT"`
	BreakerFailures uint32        `env:"BREAKER_FAILURES"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "authsession.db"
	c.CallbackAddr = "127.0.0.1:9876"
	c.RequestTimeout = 10 * time.Second
	c.SignInTimeout = 2 * time.Minute
	c.LogLevel = "info"
	c.LogBackend = "slog"
	c.LogFormat = "text"
	c.BreakerTimeout = 30 * time.Second
	c.BreakerFailures = 5
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
