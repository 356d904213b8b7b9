package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8090", c.HTTPAddr)
	assert.Equal(t, ":50051", c.GRPCHealthAddr)
	assert.Equal(t, 15*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 7*24*time.Hour, c.RefreshTokenValidityDuration)
	assert.Equal(t, 2*time.Second, c.AnalysisDelay)
	assert.Equal(t, 4, c.AnalysisConcurrency)
	assert.InDelta(t, 0.1, c.AnalysisFailureRate, 1e-9)
	assert.Empty(t, c.RedisAddr)
	assert.Empty(t, c.S3BaseEndpoint)
}

func Test_parseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"http_addr":                      ":9000",
		"database_dsn":                   "postgres://json",
		"access_token_validity_duration": "90s",
		"cookie_secure":                  true,
		"cors_origins":                   []string{"https://portal.school.org"},
		"analysis_delay":                 "250ms",
		"analysis_concurrency":           2,
		"analysis_failure_rate":          0,
		"redis_addr":                     "redis:6379",
		"redis_db":                       2,
		"s3_base_endpoint":               "http://minio:9000",
	})

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, []string{"-c", path})

	want := &Config{}
	want.LoadDefaults()
	want.HTTPAddr = ":9000"
	want.DatabaseDSN = "postgres://json"
	want.AccessTokenValidityDuration = 90 * time.Second
	want.CookieSecure = true
	want.CORSOrigins = []string{"https://portal.school.org"}
	want.AnalysisDelay = 250 * time.Millisecond
	want.AnalysisConcurrency = 2
	want.AnalysisFailureRate = 0
	want.RedisAddr = "redis:6379"
	want.RedisDB = 2
	want.S3BaseEndpoint = "http://minio:9000"

	assert.Empty(t, cmp.Diff(want, cfg))
}

func Test_parseJson_Errors(t *testing.T) {
	require.Panics(t, func() { parseJson(&Config{}, []string{"-c", filepath.Join(t.TempDir(), "missing.json")}) })

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"analysis_delay": "soon"}`), 0o600))
	require.Panics(t, func() { parseJson(&Config{}, []string{"-config", bad}) })
}

func Test_parseEnv(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	parseEnv(cfg, envMap(map[string]string{
		"CLASSROOM_SECRET_KEY":        "from-env",
		"CLASSROOM_REFRESH_TOKEN_TTL": "48h",
		"CLASSROOM_COOKIE_SECURE":     "true",
		"CLASSROOM_CORS_ORIGINS":      "https://a.org, https://b.org,,",
		"CLASSROOM_REDIS_DB":          "3",
		"CLASSROOM_S3_BUCKET":         "archive",
		"CLASSROOM_ANALYSIS_STAGGER":  "1s",
		"UNRELATED":                   "x",
	}))

	assert.Equal(t, "from-env", cfg.SecretKey)
	assert.Equal(t, 48*time.Hour, cfg.RefreshTokenValidityDuration)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, []string{"https://a.org", "https://b.org"}, cfg.CORSOrigins)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "archive", cfg.S3Bucket)
	assert.Equal(t, time.Second, cfg.AnalysisStagger)
	assert.Equal(t, ":8090", cfg.HTTPAddr)
}

func Test_parseEnv_Malformed(t *testing.T) {
	for _, kv := range [][2]string{
		{"CLASSROOM_ANALYSIS_DELAY", "soon"},
		{"CLASSROOM_COOKIE_SECURE", "maybe"},
		{"CLASSROOM_REDIS_DB", "one"},
		{"CLASSROOM_ANALYSIS_FAILURE_RATE", "often"},
	} {
		require.Panics(t, func() { parseEnv(&Config{}, envMap(map[string]string{kv[0]: kv[1]})) }, kv[0])
	}
}

func Test_loadDotEnv(t *testing.T) {
	loadDotEnv(filepath.Join(t.TempDir(), "absent.env"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CLASSROOM_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("CLASSROOM_TEST_DOTENV") })

	loadDotEnv(path)
	assert.Equal(t, "loaded", os.Getenv("CLASSROOM_TEST_DOTENV"))
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"-a", ":1", "-g", ":2", "-d", "dsn", "-s", "k", "-t", "5", "-r", "12", "-l", "debug", "-redis", "r:6379", "-e", "http://s3", "-b", "bkt"},
			expected: &Config{
				HTTPAddr:                     ":1",
				GRPCHealthAddr:               ":2",
				DatabaseDSN:                  "dsn",
				SecretKey:                    "k",
				AccessTokenValidityDuration:  5 * time.Minute,
				RefreshTokenValidityDuration: 12 * time.Hour,
				LogLevel:                     "debug",
				RedisAddr:                    "r:6379",
				S3BaseEndpoint:               "http://s3",
				S3Bucket:                     "bkt",
			},
		},
		{
			name:     "durations untouched without flags",
			args:     []string{"-c", "conf.json", "-x", "1"},
			expected: &Config{AccessTokenValidityDuration: 90 * time.Second},
		},
		{name: "bad minutes", args: []string{"-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{AccessTokenValidityDuration: 90 * time.Second}
			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg, tt.args) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg, tt.args) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{"http_addr": ":7000", "secret_key": "json"})
	t.Setenv("CLASSROOM_SECRET_KEY", "env")
	t.Setenv("CLASSROOM_HTTP_ADDR", ":7100")
	os.Args = []string{"server", "-c", path, "-a", ":7200"}

	cfg := LoadConfig()
	assert.Equal(t, ":7200", cfg.HTTPAddr)
	assert.Equal(t, "env", cfg.SecretKey)
}
