package history

import (
	"sync"
	"time"

	"github.com/kilianp07/carewatch/core/model"
)

// DefaultLimit is the number of samples retained per metric.
const DefaultLimit = 60

// Series is a fixed-capacity FIFO of timestamped values.
type Series struct {
	mu     sync.RWMutex
	limit  int
	points []model.Point
}

// NewSeries returns an empty series retaining at most limit points.
// A non-positive limit falls back to DefaultLimit.
func NewSeries(limit int) *Series {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Series{limit: limit, points: make([]model.Point, 0, limit)}
}

// Append stores the value, evicting the oldest point when the series is full.
// The value is kept as given.
func (s *Series) Append(t time.Time, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := model.Point{Time: t, Value: v}
	if len(s.points) >= s.limit {
		copy(s.points, s.points[1:])
		s.points[len(s.points)-1] = p
		return
	}
	s.points = append(s.points, p)
}

// Values returns a copy of the stored values in chronological order.
func (s *Series) Values() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Value
	}
	return out
}

// Points returns a copy of the stored points in chronological order.
func (s *Series) Points() []model.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Point, len(s.points))
	copy(out, s.points)
	return out
}

// Last returns the most recent point.
func (s *Series) Last() (model.Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.points) == 0 {
		return model.Point{}, false
	}
	return s.points[len(s.points)-1], true
}

func (s *Series) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

func (s *Series) Limit() int { return s.limit }

// Clear drops every stored point.
func (s *Series) Clear() {
	s.mu.Lock()
	s.points = s.points[:0]
	s.mu.Unlock()
}
