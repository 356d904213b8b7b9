package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the portal client.
type Config struct {
	ServerURL      string
	SessionDBPath  string
	RequestTimeout time.Duration
	LogLevel       string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8090"
	c.SessionDBPath = "data/portal.db"
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig applies defaults, then the JSON file, then flags. Later
// sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}
