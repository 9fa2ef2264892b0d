package config

import (
	"encoding/json"
	"os"

	"github.com/blogsphere/authsession/internal/flagx"
	"github.com/blogsphere/authsession/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	APIBaseURL      string         `json:"api_base_url"`
	DatabasePath    string         `json:"database_path"`
	CallbackAddr    string         `json:"callback_addr"`
	RequestTimeout  timex.Duration `json:"request_timeout"`
	SignInTimeout   timex.Duration `json:"signin_timeout"`
	LogLevel        string         `json:"log_level"`
	LogBackend      string         `json:"log_backend"`
	LogFormat       string         `json:"log_format"`
	BreakerTimeout  timex.Duration `json:"breaker_timeout"`
	BreakerFailures uint32         `json:"breaker_failures"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c or -config flag; without it nothing is
// loaded. Only fields present in the file (non-zero) override cfg.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.CallbackAddr, jc.CallbackAddr)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogBackend, jc.LogBackend)
	setString(&cfg.LogFormat, jc.LogFormat)
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.SignInTimeout.Duration != 0 {
		cfg.SignInTimeout = jc.SignInTimeout.Duration
	}
	if jc.BreakerTimeout.Duration != 0 {
		cfg.BreakerTimeout = jc.BreakerTimeout.Duration
	}
	if jc.BreakerFailures != 0 {
		cfg.BreakerFailures = jc.BreakerFailures
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
