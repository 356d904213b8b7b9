package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/classroom/internal/flagx"
)

// parseFlags overlays cfg with the server flags found in args. See the
// package doc for the list. Malformed values panic.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-s", "-t", "-r", "-l", "-redis", "-e", "-b"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "HTTP address and port")
	fs.StringVar(&cfg.GRPCHealthAddr, "g", cfg.GRPCHealthAddr, "gRPC health address and port")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(cfg.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidity := fs.Int("r", int(cfg.RefreshTokenValidityDuration.Hours()), "refresh token validity (in hours)")

	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis address")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
		case "r":
			cfg.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidity) * time.Hour
		}
	})
}
