package metrics

import (
	"errors"
	"io"
	"time"

	"github.com/kilianp07/carewatch/core/model"
)

// TickEvent is the state reached after one simulation tick.
type TickEvent struct {
	RunID string
	Tick  uint64
	Time  time.Time
	State model.State
	Shock bool
}

// ForecastEvent carries the forecasts computed after a tick.
type ForecastEvent struct {
	RunID     string
	Tick      uint64
	Time      time.Time
	Forecasts []model.Forecast
}

// MetricsSink records simulation ticks for observability purposes.
type MetricsSink interface {
	RecordTick(ev TickEvent) error
}

// ForecastRecorder records forecasts.
type ForecastRecorder interface {
	RecordForecast(ev ForecastEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordTick(TickEvent) error         { return nil }
func (NopSink) RecordForecast(ForecastEvent) error { return nil }

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordTick forwards the event to every sink. All sinks are attempted and
// their errors joined.
func (m *MultiSink) RecordTick(ev TickEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordTick(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordForecast forwards forecasts to the sinks supporting them.
func (m *MultiSink) RecordForecast(ev ForecastEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if fr, ok := s.(ForecastRecorder); ok {
			if err := fr.RecordForecast(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink holding resources.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close releases the sink's resources when it holds any.
func Close(s MetricsSink) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
