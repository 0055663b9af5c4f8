package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/carewatch/core/metrics"
	"github.com/kilianp07/carewatch/core/model"
)

type bodyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (b *bodyRecorder) handler(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.bodies = append(b.bodies, strings.TrimSpace(string(data)))
	b.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func TestInfluxSink_RecordTick(t *testing.T) {
	rec := &bodyRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	now := time.Now()
	ev := coremetrics.TickEvent{
		RunID: "run1",
		Tick:  4,
		Time:  now,
		State: model.State{Oxygen: 11752.50049, Beds: 19, Staff: 39},
		Shock: true,
	}
	if err := sink.RecordTick(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("resource_state").
		AddTag("run_id", "run1").
		AddTag("component", "simulation").
		AddField("oxygen", 11752.5).
		AddField("beds", 19).
		AddField("staff", 39).
		AddField("shock", true).
		AddField("tick", uint64(4)).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(rec.bodies) != 1 || rec.bodies[0] != expected {
		t.Errorf("unexpected body: %#v", rec.bodies)
	}
}

func TestInfluxSink_RecordForecast(t *testing.T) {
	rec := &bodyRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	ev := coremetrics.ForecastEvent{
		RunID: "run1",
		Tick:  9,
		Time:  time.Now(),
		Forecasts: []model.Forecast{
			{Metric: model.MetricOxygen, Values: []float64{100, 90}},
			{Metric: model.MetricBeds, Values: []float64{20, 21}},
		},
	}
	if err := sink.RecordForecast(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if len(rec.bodies) != 1 {
		t.Fatalf("expected one batch got %d", len(rec.bodies))
	}
	lines := strings.Split(rec.bodies[0], "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines got %d: %q", len(lines), rec.bodies[0])
	}
	for _, want := range []string{"resource_forecast,", "metric=oxygen", "run_id=run1", "step=1", "value=100"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("first line %q missing %q", lines[0], want)
		}
	}
	if !strings.Contains(lines[3], "metric=beds") || !strings.Contains(lines[3], "step=2") {
		t.Errorf("unexpected last line %q", lines[3])
	}

	if err := sink.RecordForecast(coremetrics.ForecastEvent{}); err != nil {
		t.Fatalf("empty forecast: %v", err)
	}
	if len(rec.bodies) != 1 {
		t.Fatalf("empty forecast must not write")
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}

func TestNewInfluxSinkWithFallbackHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"influxdb","message":"ready for queries and writes","status":"pass","checks":[]}`))
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL, Org: "org", Bucket: "bucket"})
	s, ok := sink.(*InfluxSink)
	if !ok {
		t.Fatalf("expected InfluxSink on healthy instance")
	}
	_ = s.Close()
}
