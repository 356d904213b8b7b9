// Package config loads runtime configuration for the portal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the portal server
//	-f string   path of the local session database
//	-t int      request timeout (seconds)
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "10s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:8090",
//	  "session_db_path": "data/portal.db",
//	  "request_timeout": "10s",
//	  "log_level": "warn"
//	}
package config
