package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"server_url":      "http://portal.example:9000",
		"session_db_path": "s.db",
		"request_timeout": "15s",
		"log_level":       "error",
	})
	partial := writeTempJSON(t, dir, "partial.json", map[string]any{
		"log_level": "debug",
	})

	t.Run("loads every field", func(t *testing.T) {
		cfg := &Config{}
		parseJson(cfg, []string{"-config", full})

		assert.Equal(t, "http://portal.example:9000", cfg.ServerURL)
		assert.Equal(t, "s.db", cfg.SessionDBPath)
		assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
		assert.Equal(t, "error", cfg.LogLevel)
	})

	t.Run("missing keys keep defaults", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg, []string{"-c", partial})

		assert.Equal(t, "http://localhost:8090", cfg.ServerURL)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("no config flag", func(t *testing.T) {
		cfg := &Config{ServerURL: "keep"}
		parseJson(cfg, []string{"-a", "x"})
		assert.Equal(t, "keep", cfg.ServerURL)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ nope`), 0o600))
		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", bad}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", filepath.Join(dir, "none.json")}) })
	})
}
