package simulation

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/carewatch/core/history"
	"github.com/kilianp07/carewatch/core/logger"
	"github.com/kilianp07/carewatch/core/model"
)

const (
	bedDecreaseProb = 0.48
	bedChangeProb   = 0.7
	staffStableProb = 0.98
	staffDownProb   = 0.5
	shockProb       = 0.02

	oxygenBaseUse   = 20.0
	oxygenUseSpread = 30.0
	pressureFactor  = 0.5

	shockBedsMin    = 2.0
	shockBedsSpread = 6.0
	shockOxyMin     = 100.0
	shockOxySpread  = 400.0
)

// TickResult describes the outcome of one simulation step.
type TickResult struct {
	RunID string
	Tick  uint64
	Time  time.Time
	State model.State
	Shock bool
}

// Engine owns the simulated state and its history.
type Engine struct {
	mu    sync.RWMutex
	rng   Rand
	now   func() time.Time
	state model.State
	hist  *history.Store
	ticks uint64
	runID string
	log   logger.Logger
}

// NewEngine creates an engine at the seed state with empty histories.
// A nil rng falls back to a time-seeded source.
func NewEngine(rng Rand, log logger.Logger) *Engine {
	if rng == nil {
		rng = NewRand(0)
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Engine{
		rng:   rng,
		now:   time.Now,
		state: model.SeedState(),
		hist:  history.NewStore(history.DefaultLimit),
		runID: uuid.NewString(),
		log:   log,
	}
}

// SetClock replaces the timestamp source used for history points.
func (e *Engine) SetClock(now func() time.Time) {
	if now == nil {
		return
	}
	e.mu.Lock()
	e.now = now
	e.mu.Unlock()
}

// SetState overrides the current state without touching history.
func (e *Engine) SetState(s model.State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Step advances every metric by one tick and returns the new state.
func (e *Engine) Step() model.State {
	return e.Tick().State
}

// Tick advances every metric by one tick and reports whether a shock occurred.
// Draw order is fixed: oxygen use, bed direction, bed magnitude, staff
// stability, staff sign (only on drift), shock, then shock beds and oxygen.
func (e *Engine) Tick() TickResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state
	pressure := math.Max(0, 100-float64(s.Beds)*3)
	use := oxygenBaseUse + e.rng.Float64()*oxygenUseSpread + pressure*pressureFactor
	s.Oxygen = math.Max(0, s.Oxygen-use)

	dir := 1
	if e.rng.Float64() < bedDecreaseProb {
		dir = -1
	}
	mag := 0
	if e.rng.Float64() < bedChangeProb {
		mag = 1
	}
	s.Beds = clampInt(s.Beds+dir*mag, model.MinBeds, model.MaxBeds)

	drift := 0
	if e.rng.Float64() >= staffStableProb {
		drift = 1
		if e.rng.Float64() < staffDownProb {
			drift = -1
		}
	}
	s.Staff = clampInt(s.Staff+drift, model.MinStaff, model.MaxStaff)

	shock := e.rng.Float64() < shockProb
	if shock {
		lost := int(math.Floor(shockBedsMin + e.rng.Float64()*shockBedsSpread))
		s.Beds = clampInt(s.Beds-lost, model.MinBeds, model.MaxBeds)
		s.Oxygen = math.Max(0, s.Oxygen-(shockOxyMin+e.rng.Float64()*shockOxySpread))
	}

	ts := e.now()
	e.state = s
	e.ticks++
	e.hist.AppendState(ts, s)

	if shock {
		e.log.Warnf("shock event at tick %d: beds=%d oxygen=%.1f", e.ticks, s.Beds, s.Oxygen)
	}
	e.log.Debugw("tick", map[string]any{
		"tick":   e.ticks,
		"oxygen": s.Oxygen,
		"beds":   s.Beds,
		"staff":  s.Staff,
	})
	return TickResult{RunID: e.runID, Tick: e.ticks, Time: ts, State: s, Shock: shock}
}

// Reset restores the seed state, clears every history and runs one tick so
// the series start with a single point.
func (e *Engine) Reset() TickResult {
	e.mu.Lock()
	e.state = model.SeedState()
	e.hist.ClearAll()
	e.ticks = 0
	e.runID = uuid.NewString()
	e.mu.Unlock()
	e.log.Infof("simulation reset, run %s", e.RunID())
	return e.Tick()
}

// Warmup appends n synthetic points around the current state without
// changing it, giving forecasts enough history before the first tick.
// Oxygen trends down by 20 L per point with up to 60 L of noise, beds follow
// a small sine wave and staff jitters by at most one.
func (e *Engine) Warmup(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	base := e.state
	for i := 0; i < n; i++ {
		ts := e.now()
		oxy := base.Oxygen - float64(i)*20 + e.rng.Float64()*60
		beds := float64(base.Beds) + roundHalfUp(math.Sin(float64(i)/3)*2)
		staff := float64(base.Staff) + roundHalfUp(e.rng.Float64()*2-1)
		e.hist.Append(model.MetricOxygen, ts, oxy)
		e.hist.Append(model.MetricBeds, ts, beds)
		e.hist.Append(model.MetricStaff, ts, staff)
	}
	if n > 0 {
		e.log.Infof("warmed up history with %d points", n)
	}
}

// State returns a snapshot of the current state.
func (e *Engine) State() model.State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// History returns the chronological points of the metric.
func (e *Engine) History(m model.Metric) []model.Point {
	return e.hist.Points(m)
}

// Values returns the chronological values of the metric.
func (e *Engine) Values(m model.Metric) []float64 {
	return e.hist.Values(m)
}

// Ticks returns the number of ticks since the last reset.
func (e *Engine) Ticks() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ticks
}

// RunID identifies the current run; it changes on every Reset.
func (e *Engine) RunID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.runID
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundHalfUp rounds halves towards positive infinity.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
