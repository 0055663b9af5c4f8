package history

import (
	"time"

	"github.com/kilianp07/carewatch/core/model"
)

// Store holds one Series per tracked metric.
type Store struct {
	series map[model.Metric]*Series
}

// NewStore creates an empty series of the given limit for every metric.
func NewStore(limit int) *Store {
	s := &Store{series: make(map[model.Metric]*Series, len(model.Metrics()))}
	for _, m := range model.Metrics() {
		s.series[m] = NewSeries(limit)
	}
	return s
}

// Series returns the buffer of the metric, or nil for an unknown metric.
func (s *Store) Series(m model.Metric) *Series { return s.series[m] }

// Append adds a sample to the metric's series. Unknown metrics are ignored.
func (s *Store) Append(m model.Metric, t time.Time, v float64) {
	if ser := s.series[m]; ser != nil {
		ser.Append(t, v)
	}
}

// AppendState records every metric of st at time t.
func (s *Store) AppendState(t time.Time, st model.State) {
	for _, m := range model.Metrics() {
		s.Append(m, t, st.Value(m))
	}
}

// Values returns the chronological values of the metric.
func (s *Store) Values(m model.Metric) []float64 {
	if ser := s.series[m]; ser != nil {
		return ser.Values()
	}
	return nil
}

// Points returns the chronological points of the metric.
func (s *Store) Points(m model.Metric) []model.Point {
	if ser := s.series[m]; ser != nil {
		return ser.Points()
	}
	return nil
}

// Len returns the number of points stored for the metric.
func (s *Store) Len(m model.Metric) int {
	if ser := s.series[m]; ser != nil {
		return ser.Len()
	}
	return 0
}

// Clear empties the metric's series.
func (s *Store) Clear(m model.Metric) {
	if ser := s.series[m]; ser != nil {
		ser.Clear()
	}
}

// ClearAll empties every series.
func (s *Store) ClearAll() {
	for _, ser := range s.series {
		ser.Clear()
	}
}
