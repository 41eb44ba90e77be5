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
			args: []string{"-d", "db", "-m", ":9300", "-a=false", "-n", "4", "-t", "5", "-l", "warn", "-c", "ignored.json"},
			expected: &Config{
				DatabaseDSN:     "db",
				MetricsAddr:     ":9300",
				AutoMigrate:     false,
				MaxOpenConns:    4,
				ConnMaxLifetime: 5 * time.Minute,
				LogLevel:        "warn",
			},
		},
		{
			name:        "bad int",
			args:        []string{"-n", "many"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{AutoMigrate: true}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config, tt.args) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config, tt.args) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
