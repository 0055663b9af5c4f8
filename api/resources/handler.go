package resources

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/carewatch/core/model"
	"github.com/kilianp07/carewatch/core/simulation"
)

// Reader exposes the simulated state, its history and forecasts.
type Reader interface {
	Snapshot() model.State
	History(m model.Metric) []model.Point
	Forecasts() []model.Forecast
	Predict(m model.Metric, horizon int) ([]float64, error)
}

// Controls drives the tick scheduler.
type Controls interface {
	Pause()
	Resume()
	Reset() simulation.TickResult
	SetInterval(d time.Duration) error
	Running() bool
	Interval() time.Duration
}

type stateDTO struct {
	Oxygen float64 `json:"oxygen"`
	Beds   int     `json:"beds"`
	Staff  int     `json:"staff"`
}

type pointDTO struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

type controlDTO struct {
	Running    bool  `json:"running"`
	IntervalMS int64 `json:"interval_ms"`
}

func toState(s model.State) stateDTO {
	return stateDTO{Oxygen: s.Oxygen, Beds: s.Beds, Staff: s.Staff}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// NewStateHandler returns an HTTP handler exposing the current state via GET /api/resources/state.
func NewStateHandler(src Reader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, toState(src.Snapshot()))
	})
}

// NewHistoryHandler exposes the retained points of one metric via
// GET /api/resources/history?metric=beds.
func NewHistoryHandler(src Reader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		m, err := model.ParseMetric(r.URL.Query().Get("metric"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		pts := src.History(m)
		out := make([]pointDTO, len(pts))
		for i, p := range pts {
			out[i] = pointDTO{Time: p.Time, Value: p.Value}
		}
		writeJSON(w, out)
	})
}

// NewForecastHandler exposes forecasts via GET /api/resources/forecast.
// Without a metric the forecasts of the latest tick are returned, keyed by
// metric name. With ?metric=beds&horizon=N a fresh forecast is computed.
func NewForecastHandler(src Reader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		q := r.URL.Query()
		if q.Get("metric") == "" {
			out := map[string][]float64{}
			for _, f := range src.Forecasts() {
				out[f.Metric.String()] = f.Values
			}
			writeJSON(w, out)
			return
		}
		m, err := model.ParseMetric(q.Get("metric"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		horizon := 0
		if h := q.Get("horizon"); h != "" {
			if horizon, err = strconv.Atoi(h); err != nil {
				http.Error(w, "invalid horizon", http.StatusBadRequest)
				return
			}
		} else if fc := src.Forecasts(); len(fc) > 0 {
			horizon = len(fc[0].Values)
		}
		values, err := src.Predict(m, horizon)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, model.ErrInvalidConfiguration) {
				status = http.StatusBadRequest
			}
			http.Error(w, err.Error(), status)
			return
		}
		writeJSON(w, map[string][]float64{m.String(): values})
	})
}

// NewControlHandler exposes the scheduler under /api/control. GET returns
// the scheduler status; POST /api/control/{pause,resume,reset} and
// POST /api/control/interval?ms=N change it. Requests must include an
// Authorization header with "Bearer <token>" when token is non-empty.
func NewControlHandler(ctrl Controls, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		action := strings.TrimPrefix(r.URL.Path, "/api/control")
		if action == "" || action == "/" {
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			writeJSON(w, controlDTO{Running: ctrl.Running(), IntervalMS: ctrl.Interval().Milliseconds()})
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		switch action {
		case "/pause":
			ctrl.Pause()
		case "/resume":
			ctrl.Resume()
		case "/reset":
			res := ctrl.Reset()
			writeJSON(w, toState(res.State))
			return
		case "/interval":
			ms, err := strconv.Atoi(r.URL.Query().Get("ms"))
			if err != nil {
				http.Error(w, "invalid ms", http.StatusBadRequest)
				return
			}
			if err := ctrl.SetInterval(time.Duration(ms) * time.Millisecond); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		default:
			http.NotFound(w, r)
			return
		}
		writeJSON(w, controlDTO{Running: ctrl.Running(), IntervalMS: ctrl.Interval().Milliseconds()})
	})
}

// NewMux mounts every handler on a fresh ServeMux.
func NewMux(src Reader, ctrl Controls, token string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/resources/state", NewStateHandler(src))
	mux.Handle("/api/resources/history", NewHistoryHandler(src))
	mux.Handle("/api/resources/forecast", NewForecastHandler(src))
	control := NewControlHandler(ctrl, token)
	mux.Handle("/api/control", control)
	mux.Handle("/api/control/", control)
	return mux
}
