package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/passkeeper/internal/flagx"
	"github.com/dmitrijs2005/passkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Pointer fields
// distinguish "absent" from zero values so a partial file only overrides
// what it sets.
type JsonConfig struct {
	DatabaseDSN     *string         `json:"database_dsn"`
	MetricsAddr     *string         `json:"metrics_addr"`
	AutoMigrate     *bool           `json:"auto_migrate"`
	MaxOpenConns    *int            `json:"max_open_conns"`
	ConnMaxLifetime *timex.Duration `json:"conn_max_lifetime"`
	LogLevel        *string         `json:"log_level"`
	LogFormat       *string         `json:"log_format"`
}

// parseJson overlays the file named by -c/-config, if any. An unreadable or
// malformed file panics: the process cannot start with a half-read config.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return
	}
	if err := ApplyJSONFile(config, path); err != nil {
		panic(err)
	}
}

// ApplyJSONFile reads the JSON file at path and overlays the fields it sets.
func ApplyJSONFile(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.MetricsAddr != nil {
		config.MetricsAddr = *c.MetricsAddr
	}
	if c.AutoMigrate != nil {
		config.AutoMigrate = *c.AutoMigrate
	}
	if c.MaxOpenConns != nil {
		config.MaxOpenConns = *c.MaxOpenConns
	}
	if c.ConnMaxLifetime != nil {
		config.ConnMaxLifetime = c.ConnMaxLifetime.Duration
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
	if c.LogFormat != nil {
		config.LogFormat = *c.LogFormat
	}
	return nil
}
