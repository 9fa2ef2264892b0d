// Package config loads runtime configuration for the terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables prefixed with AUTHSESSION_ (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   backend base URL
//	-d string   SQLite database path
//	-l string   OAuth callback listen address
//	-t int      request timeout (seconds)
//	-w int      sign-in wait timeout (seconds)
//	-v string   log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "10s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8080",
//	  "database_path": "authsession.db",
//	  "callback_addr": "127.0.0.1:9876",
//	  "request_timeout": "10s",
//	  "signin_timeout": "2m",
//	  "log_level": "info",
//	  "log_backend": "zap",
//	  "log_format": "json",
//	  "breaker_timeout": "30s",
//	  "breaker_failures": 5
//	}
package config
