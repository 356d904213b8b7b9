package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "CLASSROOM_"

// loadDotEnv copies the variables of path into the process environment.
// Variables that are already set win. A missing file is not an error.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

// parseEnv overlays cfg with CLASSROOM_* variables. Malformed values panic.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(envPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}

	str("HTTP_ADDR", &cfg.HTTPAddr)
	str("GRPC_HEALTH_ADDR", &cfg.GRPCHealthAddr)
	str("DATABASE_DSN", &cfg.DatabaseDSN)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("SECRET_KEY", &cfg.SecretKey)
	dur("ACCESS_TOKEN_TTL", &cfg.AccessTokenValidityDuration)
	dur("REFRESH_TOKEN_TTL", &cfg.RefreshTokenValidityDuration)
	if v, ok := lookup(envPrefix + "COOKIE_SECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		cfg.CookieSecure = b
	}
	if v, ok := lookup(envPrefix + "CORS_ORIGINS"); ok {
		cfg.CORSOrigins = splitList(v)
	}
	dur("ANALYSIS_DELAY", &cfg.AnalysisDelay)
	dur("ANALYSIS_STAGGER", &cfg.AnalysisStagger)
	if v, ok := lookup(envPrefix + "ANALYSIS_CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		cfg.AnalysisConcurrency = n
	}
	if v, ok := lookup(envPrefix + "ANALYSIS_FAILURE_RATE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(err)
		}
		cfg.AnalysisFailureRate = f
	}
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("REDIS_PASSWORD", &cfg.RedisPassword)
	if v, ok := lookup(envPrefix + "REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		cfg.RedisDB = n
	}
	dur("DASHBOARD_CACHE_TTL", &cfg.DashboardCacheTTL)
	str("S3_ROOT_USER", &cfg.S3RootUser)
	str("S3_ROOT_PASSWORD", &cfg.S3RootPassword)
	str("S3_BUCKET", &cfg.S3Bucket)
	str("S3_REGION", &cfg.S3Region)
	str("S3_BASE_ENDPOINT", &cfg.S3BaseEndpoint)
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
