package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/carewatch/api/resources"
	"github.com/kilianp07/carewatch/config"
	coremetrics "github.com/kilianp07/carewatch/core/metrics"
	"github.com/kilianp07/carewatch/core/model"
	"github.com/kilianp07/carewatch/core/prediction"
	"github.com/kilianp07/carewatch/core/simulation"
)

func newTestService(t *testing.T, warmup int) *Service {
	t.Helper()
	cfg := config.Default()
	cfg.Simulation.Warmup = warmup
	cfg.Simulation.ForecastHorizon = 2
	svc, err := NewWithDeps(cfg, &simulation.SequenceRand{Values: []float64{0.5}}, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestServiceStartsWithOneTick(t *testing.T) {
	svc := newTestService(t, -1)

	assert.Equal(t, model.State{Oxygen: 11952.5, Beds: 26, Staff: 40}, svc.Snapshot())
	for _, m := range model.Metrics() {
		assert.Len(t, svc.History(m), 1)
	}
	fc := svc.Forecasts()
	require.Len(t, fc, 3)
	assert.Equal(t, model.MetricBeds, fc[1].Metric)
	assert.Equal(t, []float64{26, 26}, fc[1].Values)
}

func TestServiceTickRefreshesForecasts(t *testing.T) {
	svc := newTestService(t, -1)
	svc.Controller().Tick()
	svc.Controller().Tick()

	assert.Equal(t, 28, svc.Snapshot().Beds)
	assert.Len(t, svc.History(model.MetricBeds), 3)
	fc := svc.Forecasts()
	assert.Equal(t, []float64{29, 30}, fc[1].Values)
	assert.Equal(t, []float64{40, 40}, fc[2].Values)

	got, err := svc.Predict(model.MetricBeds, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{29, 30, 31, 32}, got)
}

func TestServiceWarmup(t *testing.T) {
	svc := newTestService(t, 18)
	assert.Equal(t, model.SeedState(), svc.Snapshot())
	assert.Len(t, svc.History(model.MetricOxygen), 18)
	assert.Len(t, svc.Forecasts()[0].Values, 2)
}

func TestServicePredictRejectsHorizon(t *testing.T) {
	svc := newTestService(t, -1)
	_, err := svc.Predict(model.MetricStaff, 0)
	assert.ErrorIs(t, err, config.ErrInvalidConfiguration)
}

func TestServiceSetForecaster(t *testing.T) {
	svc := newTestService(t, -1)
	mock := &prediction.MockForecaster{Fallback: 7}
	svc.SetForecaster(mock)
	assert.Equal(t, []float64{7, 7}, svc.Forecasts()[0].Values)
	assert.Equal(t, 3, mock.Calls)
}

func TestServicePublishesEvents(t *testing.T) {
	svc := newTestService(t, -1)
	sub := svc.Bus().Subscribe()
	res := svc.Controller().Tick()

	ev := <-sub
	tick, ok := ev.(coremetrics.TickEvent)
	require.True(t, ok)
	assert.Equal(t, res.Tick, tick.Tick)
	assert.Equal(t, res.State, tick.State)

	ev = <-sub
	fc, ok := ev.(coremetrics.ForecastEvent)
	require.True(t, ok)
	assert.Len(t, fc.Forecasts, 3)
}

func TestNewWithDepsRejectsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.TickIntervalMS = 0
	_, err := NewWithDeps(cfg, nil, nil, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfiguration)

	_, err = NewWithDeps(nil, nil, nil, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfiguration)
}

type recordSink struct{ ticks chan coremetrics.TickEvent }

func (r recordSink) RecordTick(ev coremetrics.TickEvent) error {
	r.ticks <- ev
	return nil
}

type forecastSink struct {
	recordSink
	forecasts []coremetrics.ForecastEvent
}

func (f *forecastSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	f.forecasts = append(f.forecasts, ev)
	return nil
}

func TestServiceRecordsStartupTick(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.Warmup = -1
	sink := &forecastSink{recordSink: recordSink{ticks: make(chan coremetrics.TickEvent, 4)}}
	svc, err := NewWithDeps(cfg, &simulation.SequenceRand{Values: []float64{0.5}}, sink, nil)
	require.NoError(t, err)
	defer svc.Close()

	require.Len(t, sink.ticks, 1)
	ev := <-sink.ticks
	assert.Equal(t, uint64(1), ev.Tick)
	assert.Equal(t, svc.Snapshot(), ev.State)
	require.Len(t, sink.forecasts, 1)
	assert.Len(t, sink.forecasts[0].Forecasts, 3)
}

func TestServiceRecordsWarmupForecast(t *testing.T) {
	cfg := config.Default()
	sink := &forecastSink{recordSink: recordSink{ticks: make(chan coremetrics.TickEvent, 4)}}
	svc, err := NewWithDeps(cfg, &simulation.SequenceRand{Values: []float64{0.5}}, sink, nil)
	require.NoError(t, err)
	defer svc.Close()

	assert.Len(t, sink.ticks, 0)
	require.Len(t, sink.forecasts, 1)
	assert.Len(t, sink.forecasts[0].Forecasts[0].Values, cfg.Simulation.ForecastHorizon)
}

func TestServiceRunExportsTicks(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.TickIntervalMS = 10
	cfg.Simulation.Warmup = -1
	sink := recordSink{ticks: make(chan coremetrics.TickEvent, 64)}
	svc, err := NewWithDeps(cfg, simulation.NewRand(1), sink, nil)
	require.NoError(t, err)
	defer svc.Close()

	initial := <-sink.ticks
	assert.Equal(t, uint64(1), initial.Tick)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	select {
	case ev := <-sink.ticks:
		assert.GreaterOrEqual(t, ev.Tick, uint64(2))
	case <-time.After(2 * time.Second):
		t.Fatal("no tick exported")
	}
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}
}

func TestServiceServesAPI(t *testing.T) {
	svc := newTestService(t, -1)
	rr := httptest.NewRecorder()
	resources.NewMux(svc, svc.Controller(), "").ServeHTTP(rr, httptest.NewRequest("GET", "/api/resources/state", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"oxygen":11952.5,"beds":26,"staff":40}`, rr.Body.String())
}
