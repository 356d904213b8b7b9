package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/classroom/internal/flagx"
	"github.com/dmitrijs2005/classroom/internal/timex"
)

// JsonConfig is the on-disk form of Config.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	SessionDBPath  string         `json:"session_db_path"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	LogLevel       string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config in args. Keys
// missing from the file keep their current values. Unreadable or invalid
// files panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.SessionDBPath != "" {
		cfg.SessionDBPath = jc.SessionDBPath
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
