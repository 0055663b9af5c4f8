package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilianp07/carewatch/api/resources"
	"github.com/kilianp07/carewatch/config"
	coremetrics "github.com/kilianp07/carewatch/core/metrics"
	"github.com/kilianp07/carewatch/core/model"
	"github.com/kilianp07/carewatch/core/prediction"
	"github.com/kilianp07/carewatch/core/scheduler"
	"github.com/kilianp07/carewatch/core/simulation"
	"github.com/kilianp07/carewatch/infra/logger"
	"github.com/kilianp07/carewatch/infra/metrics"
	"github.com/kilianp07/carewatch/internal/eventbus"
)

// Service wires the simulation engine, its controller and the metrics sinks.
type Service struct {
	cfg        *config.Config
	engine     *simulation.Engine
	controller *scheduler.Controller
	forecaster prediction.Forecaster
	bus        *eventbus.Bus
	sink       coremetrics.MetricsSink
	log        logger.Logger

	mu        sync.RWMutex
	forecasts []model.Forecast
}

// New creates a Service from the configuration, building the sinks it names.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrInvalidConfiguration)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	svc, err := NewWithDeps(cfg, simulation.NewRand(cfg.Simulation.Seed), sink, logger.New("service"))
	if err != nil {
		_ = coremetrics.Close(sink)
		return nil, err
	}
	return svc, nil
}

// NewWithDeps creates a Service around an explicit random source and sink.
// The history is warmed up, or seeded with one tick when warmup is disabled.
func NewWithDeps(cfg *config.Config, rng simulation.Rand, sink coremetrics.MetricsSink, log logger.Logger) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrInvalidConfiguration)
	}
	if err := cfg.Simulation.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	engine := simulation.NewEngine(rng, logger.New("simulation"))
	ctrl, err := scheduler.NewController(engine, cfg.Simulation.TickInterval(), logger.New("scheduler"))
	if err != nil {
		return nil, fmt.Errorf("controller: %w", err)
	}
	s := &Service{
		cfg:        cfg,
		engine:     engine,
		controller: ctrl,
		forecaster: prediction.LinearTrend{},
		bus:        eventbus.New(),
		sink:       sink,
		log:        log,
	}
	ctrl.AddObserver(scheduler.ObserverFunc(s.onTick))
	// The collector only subscribes in Run, so the startup state goes
	// straight to the sink.
	if cfg.Simulation.Warmup > 0 {
		engine.Warmup(cfg.Simulation.Warmup)
		fc := s.refreshForecasts()
		s.recordForecast(coremetrics.ForecastEvent{RunID: engine.RunID(), Forecasts: fc})
	} else {
		res := engine.Reset()
		tick, forecast := s.events(res, s.refreshForecasts())
		if err := s.sink.RecordTick(tick); err != nil {
			s.log.Errorf("record initial tick: %v", err)
		}
		s.recordForecast(forecast)
	}
	return s, nil
}

// SetForecaster replaces the forecasting model used after every tick.
func (s *Service) SetForecaster(f prediction.Forecaster) {
	if f == nil {
		return
	}
	s.mu.Lock()
	s.forecaster = f
	s.mu.Unlock()
	s.refreshForecasts()
}

// Controller exposes the tick controller (pause, resume, interval, reset).
func (s *Service) Controller() *scheduler.Controller { return s.controller }

// Bus returns the event bus carrying TickEvent and ForecastEvent values.
func (s *Service) Bus() eventbus.EventBus { return s.bus }

// Sink returns the sink receiving exported events.
func (s *Service) Sink() coremetrics.MetricsSink { return s.sink }

// Snapshot returns the current state.
func (s *Service) Snapshot() model.State { return s.engine.State() }

// History returns the retained points of a metric, oldest first.
func (s *Service) History(m model.Metric) []model.Point { return s.engine.History(m) }

// Forecasts returns the forecasts computed after the latest tick.
func (s *Service) Forecasts() []model.Forecast {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Forecast, len(s.forecasts))
	for i, f := range s.forecasts {
		out[i] = model.Forecast{Metric: f.Metric, Values: append([]float64(nil), f.Values...)}
	}
	return out
}

// Predict forecasts horizon steps of a metric from its current history.
func (s *Service) Predict(m model.Metric, horizon int) ([]float64, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("%w: horizon must be at least 1, got %d", config.ErrInvalidConfiguration, horizon)
	}
	s.mu.RLock()
	f := s.forecaster
	s.mu.RUnlock()
	return f.Forecast(s.engine.Values(m), horizon), nil
}

// Run drives the controller and exports events until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	collected := metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("collector"))
	if s.cfg.Metrics.HasSink("prometheus") {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr, nil); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.cfg.API.Addr != "" {
		go func() {
			if err := resources.Serve(ctx, s.cfg.API.Addr, resources.NewMux(s, s.controller, s.cfg.API.Token)); err != nil {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}
	s.log.Infof("service started, run %s", s.engine.RunID())
	err := s.controller.Run(ctx)
	cancel()
	<-collected
	return err
}

// Close releases the bus and the sinks.
func (s *Service) Close() error {
	s.bus.Close()
	return coremetrics.Close(s.sink)
}

func (s *Service) onTick(res simulation.TickResult) {
	tick, forecast := s.events(res, s.refreshForecasts())
	s.bus.Publish(tick)
	s.bus.Publish(forecast)
}

func (s *Service) events(res simulation.TickResult, fc []model.Forecast) (coremetrics.TickEvent, coremetrics.ForecastEvent) {
	tick := coremetrics.TickEvent{
		RunID: res.RunID,
		Tick:  res.Tick,
		Time:  res.Time,
		State: res.State,
		Shock: res.Shock,
	}
	forecast := coremetrics.ForecastEvent{
		RunID:     res.RunID,
		Tick:      res.Tick,
		Time:      res.Time,
		Forecasts: fc,
	}
	return tick, forecast
}

func (s *Service) recordForecast(ev coremetrics.ForecastEvent) {
	r, ok := s.sink.(coremetrics.ForecastRecorder)
	if !ok {
		return
	}
	if err := r.RecordForecast(ev); err != nil {
		s.log.Errorf("record forecast: %v", err)
	}
}

func (s *Service) refreshForecasts() []model.Forecast {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forecasts = prediction.ForecastAll(s.engine, s.forecaster, s.cfg.Simulation.ForecastHorizon)
	return s.forecasts
}
