package config

import "github.com/kilianp07/carewatch/infra/logger"

// LoggingConfig selects the minimum log level.
type LoggingConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks the level name.
func (c LoggingConfig) Validate() error {
	_, err := logger.ParseLevel(c.Level)
	return err
}
