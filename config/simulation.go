package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/carewatch/core/history"
	"github.com/kilianp07/carewatch/core/prediction"
)

const (
	DefaultTickIntervalMS = 1500
	DefaultWarmup         = 18
)

// SimulationConfig controls the engine and the controller cadence.
type SimulationConfig struct {
	TickIntervalMS  int   `json:"tick_interval_ms"`
	HistoryLimit    int   `json:"history_limit"`
	ForecastHorizon int   `json:"forecast_horizon"`
	// Seed for the random source; 0 seeds from the clock.
	Seed            int64 `json:"seed"`
	// Warmup is the number of synthetic points appended before the first
	// tick. Negative disables it.
	Warmup          int   `json:"warmup"`
}

// SetDefaults applies sane defaults.
func (c *SimulationConfig) SetDefaults() {
	if c.TickIntervalMS == 0 {
		c.TickIntervalMS = DefaultTickIntervalMS
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = history.DefaultLimit
	}
	if c.ForecastHorizon == 0 {
		c.ForecastHorizon = prediction.DefaultHorizon
	}
	if c.Warmup == 0 {
		c.Warmup = DefaultWarmup
	}
}

// Validate rejects values the engine cannot run with.
func (c SimulationConfig) Validate() error {
	if c.TickIntervalMS <= 0 {
		return fmt.Errorf("%w: tick_interval_ms must be positive, got %d", ErrInvalidConfiguration, c.TickIntervalMS)
	}
	if c.HistoryLimit != history.DefaultLimit {
		return fmt.Errorf("%w: history_limit must be %d, got %d", ErrInvalidConfiguration, history.DefaultLimit, c.HistoryLimit)
	}
	if c.ForecastHorizon < 1 {
		return fmt.Errorf("%w: forecast_horizon must be at least 1, got %d", ErrInvalidConfiguration, c.ForecastHorizon)
	}
	return nil
}

// TickInterval returns the tick cadence as a duration.
func (c SimulationConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}
