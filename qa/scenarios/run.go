package scenarios

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/carewatch/core/history"
	coremetrics "github.com/kilianp07/carewatch/core/metrics"
	"github.com/kilianp07/carewatch/core/model"
	"github.com/kilianp07/carewatch/core/simulation"
	"github.com/kilianp07/carewatch/infra/logger"
	"github.com/kilianp07/carewatch/infra/metrics"
)

const oxygenTolerance = 1e-6

func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	rng := &simulation.SequenceRand{Values: sc.Draws}
	eng := simulation.NewEngine(rng, logger.NopLogger{})
	if sc.Initial != nil {
		eng.SetState(sc.Initial.ToModel())
	}

	shocks := 0
	for i := 0; i < sc.Ticks; i++ {
		res := eng.Tick()
		if !res.State.Valid() {
			t.Fatalf("scenario %s tick %d left bounds: %+v", sc.Name, res.Tick, res.State)
		}
		if res.Shock {
			shocks++
		}
		if err := sink.RecordTick(coremetrics.TickEvent{Tick: res.Tick, State: res.State, Shock: res.Shock}); err != nil {
			t.Fatalf("record tick: %v", err)
		}
	}

	want := sc.Expected
	got := eng.State()
	if math.Abs(got.Oxygen-want.State.Oxygen) > oxygenTolerance || got.Beds != want.State.Beds || got.Staff != want.State.Staff {
		t.Errorf("scenario %s expected state %+v, got %+v", sc.Name, want.State.ToModel(), got)
	}
	if shocks != want.Shocks {
		t.Errorf("scenario %s expected %d shocks, got %d", sc.Name, want.Shocks, shocks)
	}
	if exported := counterValue(t, reg, "carewatch_shocks_total"); int(exported) != shocks {
		t.Errorf("scenario %s exported %v shocks, counted %d", sc.Name, exported, shocks)
	}
	if want.Draws > 0 && rng.Draws() != want.Draws {
		t.Errorf("scenario %s expected %d draws, got %d", sc.Name, want.Draws, rng.Draws())
	}
	if len(want.Beds) > 0 {
		beds := eng.Values(model.MetricBeds)
		if len(beds) != len(want.Beds) {
			t.Fatalf("scenario %s expected %d bed points, got %d", sc.Name, len(want.Beds), len(beds))
		}
		for i := range beds {
			if beds[i] != want.Beds[i] {
				t.Errorf("scenario %s bed point %d: expected %v, got %v", sc.Name, i, want.Beds[i], beds[i])
			}
		}
	}
	for _, m := range model.Metrics() {
		if n := len(eng.History(m)); n != min(sc.Ticks, history.DefaultLimit) {
			t.Errorf("scenario %s expected %d %s points, got %d", sc.Name, min(sc.Ticks, history.DefaultLimit), m, n)
		}
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}
