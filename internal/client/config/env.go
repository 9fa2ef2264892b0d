package config

import (
	"github.com/caarlos0/env/v10"
)

// EnvPrefix prefixes every environment variable read by the client,
// e.g. AUTHSESSION_API_BASE_URL.
const EnvPrefix = "AUTHSESSION_"

// parseEnv overlays cfg with the variables that are set. Unset variables
// leave the current value alone. Panics on malformed values.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
