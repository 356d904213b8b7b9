package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/classroom/internal/flagx"
)

// parseFlags overlays cfg with the client flags found in args. See the
// package doc for the list. Malformed values panic.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-f", "-t", "-l"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "portal server base URL")
	fs.StringVar(&cfg.SessionDBPath, "f", cfg.SessionDBPath, "local session database path")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
