package config

import "github.com/caarlos0/env/v10"

// EnvPrefix prefixes every environment variable read by the backend,
// e.g. AUTHSESSION_SERVER_SECRET_KEY.
const EnvPrefix = "AUTHSESSION_SERVER_"

func parseEnv(config *Config) {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
