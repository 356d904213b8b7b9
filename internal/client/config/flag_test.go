package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://127.0.0.1:9090", "-f", "/tmp/p.db", "-t", "3", "-l", "debug"},
			expected: &Config{
				ServerURL:      "http://127.0.0.1:9090",
				SessionDBPath:  "/tmp/p.db",
				RequestTimeout: 3 * time.Second,
				LogLevel:       "debug",
			},
		},
		{
			name: "foreign flags ignored",
			args: []string{"-c", "conf.json", "-x", "1", "-t", "7"},
			expected: &Config{
				RequestTimeout: 7 * time.Second,
			},
		},
		{name: "bad timeout", args: []string{"-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg, tt.args) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg, tt.args) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
