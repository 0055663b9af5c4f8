package metrics

import (
	"encoding/json"
	"time"

	coremetrics "github.com/kilianp07/carewatch/core/metrics"
	"github.com/kilianp07/carewatch/infra/mqtt"
)

type statePayload struct {
	RunID     string  `json:"run_id"`
	Tick      uint64  `json:"tick"`
	Timestamp int64   `json:"timestamp"`
	Oxygen    float64 `json:"oxygen"`
	Beds      int     `json:"beds"`
	Staff     int     `json:"staff"`
	Shock     bool    `json:"shock"`
}

type forecastPayload struct {
	RunID     string               `json:"run_id"`
	Tick      uint64               `json:"tick"`
	Timestamp int64                `json:"timestamp"`
	Forecasts map[string][]float64 `json:"forecasts"`
}

// MQTTSink publishes ticks and forecasts as JSON documents on
// <prefix>/state and <prefix>/forecast.
type MQTTSink struct {
	pub           mqtt.Publisher
	stateTopic    string
	forecastTopic string
}

// NewMQTTSink wraps an existing publisher.
func NewMQTTSink(pub mqtt.Publisher, cfg mqtt.Config) *MQTTSink {
	cfg.SetDefaults()
	return &MQTTSink{pub: pub, stateTopic: cfg.Topic("state"), forecastTopic: cfg.Topic("forecast")}
}

// RecordTick publishes the state snapshot.
func (s *MQTTSink) RecordTick(ev coremetrics.TickEvent) error {
	payload, err := json.Marshal(statePayload{
		RunID:     ev.RunID,
		Tick:      ev.Tick,
		Timestamp: millis(ev.Time),
		Oxygen:    ev.State.Oxygen,
		Beds:      ev.State.Beds,
		Staff:     ev.State.Staff,
		Shock:     ev.Shock,
	})
	if err != nil {
		return err
	}
	return s.pub.Publish(s.stateTopic, payload)
}

// RecordForecast publishes every metric's forecast in one document.
func (s *MQTTSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	fc := make(map[string][]float64, len(ev.Forecasts))
	for _, f := range ev.Forecasts {
		fc[f.Metric.String()] = f.Values
	}
	payload, err := json.Marshal(forecastPayload{
		RunID:     ev.RunID,
		Tick:      ev.Tick,
		Timestamp: millis(ev.Time),
		Forecasts: fc,
	})
	if err != nil {
		return err
	}
	return s.pub.Publish(s.forecastTopic, payload)
}

// Close disconnects the publisher.
func (s *MQTTSink) Close() error { return s.pub.Close() }

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
