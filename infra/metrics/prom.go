package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/carewatch/core/metrics"
	"github.com/kilianp07/carewatch/core/model"
)

// PromSink exposes the simulated resources as Prometheus metrics.
type PromSink struct {
	level    *prometheus.GaugeVec
	forecast *prometheus.GaugeVec
	ticks    prometheus.Counter
	shocks   prometheus.Counter
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The HTTP endpoint should be started separately using StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	level, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "carewatch_resource_level",
		Help: "Current simulated value of each resource",
	}, []string{"metric"}))
	if err != nil {
		return nil, err
	}
	forecast, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "carewatch_resource_forecast",
		Help: "Linear trend forecast of each resource, by step ahead",
	}, []string{"metric", "step"}))
	if err != nil {
		return nil, err
	}
	ticks, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "carewatch_ticks_total",
		Help: "Total number of simulation ticks",
	}))
	if err != nil {
		return nil, err
	}
	shocks, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "carewatch_shocks_total",
		Help: "Total number of shock events",
	}))
	if err != nil {
		return nil, err
	}
	return &PromSink{level: level, forecast: forecast, ticks: ticks, shocks: shocks}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// RecordTick updates the resource gauges and tick counters.
func (s *PromSink) RecordTick(ev coremetrics.TickEvent) error {
	for _, m := range model.Metrics() {
		s.level.WithLabelValues(m.String()).Set(ev.State.Value(m))
	}
	s.ticks.Inc()
	if ev.Shock {
		s.shocks.Inc()
	}
	return nil
}

// RecordForecast sets one gauge per metric and step ahead.
func (s *PromSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	for _, f := range ev.Forecasts {
		for i, v := range f.Values {
			s.forecast.WithLabelValues(f.Metric.String(), strconv.Itoa(i+1)).Set(v)
		}
	}
	return nil
}
