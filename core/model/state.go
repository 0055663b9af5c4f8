package model

import "time"

// Domain bounds and seed values of the simulated resources.
const (
	SeedOxygen = 12000.0
	SeedBeds   = 25
	SeedStaff  = 40

	MinBeds  = 0
	MaxBeds  = 100
	MinStaff = 5
	MaxStaff = 200
)

// State is a snapshot of the simulated resources.
type State struct {
	Oxygen float64 // litres of oxygen left, never negative
	Beds   int     // free beds in [MinBeds, MaxBeds]
	Staff  int     // staff on duty in [MinStaff, MaxStaff]
}

// SeedState returns the deterministic state used at start and on reset.
func SeedState() State {
	return State{Oxygen: SeedOxygen, Beds: SeedBeds, Staff: SeedStaff}
}

// Value returns the metric value as a float.
func (s State) Value(m Metric) float64 {
	switch m {
	case MetricOxygen:
		return s.Oxygen
	case MetricBeds:
		return float64(s.Beds)
	case MetricStaff:
		return float64(s.Staff)
	default:
		return 0
	}
}

// Valid reports whether every metric lies inside its domain.
func (s State) Valid() bool {
	return s.Oxygen >= 0 &&
		s.Beds >= MinBeds && s.Beds <= MaxBeds &&
		s.Staff >= MinStaff && s.Staff <= MaxStaff
}

// Point is a single timestamped history sample.
type Point struct {
	Time  time.Time
	Value float64
}

// Forecast holds predicted values for steps t+1..t+N of one metric.
type Forecast struct {
	Metric Metric
	Values []float64
}
