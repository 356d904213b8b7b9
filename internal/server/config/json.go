package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/classroom/internal/flagx"
	"github.com/dmitrijs2005/classroom/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept "15m" style
// strings or nanoseconds.
type JsonConfig struct {
	HTTPAddr                     string         `json:"http_addr"`
	GRPCHealthAddr               string         `json:"grpc_health_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	LogLevel                     string         `json:"log_level"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	CookieSecure                 *bool          `json:"cookie_secure"`
	CORSOrigins                  []string       `json:"cors_origins"`
	AnalysisDelay                timex.Duration `json:"analysis_delay"`
	AnalysisStagger              timex.Duration `json:"analysis_stagger"`
	AnalysisConcurrency          int            `json:"analysis_concurrency"`
	AnalysisFailureRate          *float64       `json:"analysis_failure_rate"`
	RedisAddr                    string         `json:"redis_addr"`
	RedisPassword                string         `json:"redis_password"`
	RedisDB                      *int           `json:"redis_db"`
	DashboardCacheTTL            timex.Duration `json:"dashboard_cache_ttl"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
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

	setString(&cfg.HTTPAddr, jc.HTTPAddr)
	setString(&cfg.GRPCHealthAddr, jc.GRPCHealthAddr)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.SecretKey, jc.SecretKey)
	setDuration(&cfg.AccessTokenValidityDuration, jc.AccessTokenValidityDuration)
	setDuration(&cfg.RefreshTokenValidityDuration, jc.RefreshTokenValidityDuration)
	if jc.CookieSecure != nil {
		cfg.CookieSecure = *jc.CookieSecure
	}
	if jc.CORSOrigins != nil {
		cfg.CORSOrigins = jc.CORSOrigins
	}
	setDuration(&cfg.AnalysisDelay, jc.AnalysisDelay)
	setDuration(&cfg.AnalysisStagger, jc.AnalysisStagger)
	if jc.AnalysisConcurrency > 0 {
		cfg.AnalysisConcurrency = jc.AnalysisConcurrency
	}
	if jc.AnalysisFailureRate != nil {
		cfg.AnalysisFailureRate = *jc.AnalysisFailureRate
	}
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.RedisPassword, jc.RedisPassword)
	if jc.RedisDB != nil {
		cfg.RedisDB = *jc.RedisDB
	}
	setDuration(&cfg.DashboardCacheTTL, jc.DashboardCacheTTL)
	setString(&cfg.S3RootUser, jc.S3RootUser)
	setString(&cfg.S3RootPassword, jc.S3RootPassword)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
