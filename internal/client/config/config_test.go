package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8090", c.ServerURL)
	assert.Equal(t, "data/portal.db", c.SessionDBPath)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, "warn", c.LogLevel)
}

func TestLoadConfig_UsesDefaultsWithoutArgs(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"client"}

	cfg := LoadConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:8090", cfg.ServerURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_FlagsBeatJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"server_url":      "http://json:1",
		"request_timeout": "4s",
	})
	os.Args = []string{"client", "-c", path, "-a", "http://flag:2"}

	cfg := LoadConfig()
	assert.Equal(t, "http://flag:2", cfg.ServerURL)
	assert.Equal(t, 4*time.Second, cfg.RequestTimeout)
}
