package model

import (
	"fmt"
	"strings"
)

// Metric identifies one of the tracked hospital resources.
type Metric int

const (
	MetricOxygen Metric = iota
	MetricBeds
	MetricStaff
)

// Metrics returns every tracked metric in display order.
func Metrics() []Metric {
	return []Metric{MetricOxygen, MetricBeds, MetricStaff}
}

// String returns the lower-case name used in labels, topics and config.
func (m Metric) String() string {
	switch m {
	case MetricOxygen:
		return "oxygen"
	case MetricBeds:
		return "beds"
	case MetricStaff:
		return "staff"
	default:
		return "unknown"
	}
}

// Unit returns the display unit of the metric.
func (m Metric) Unit() string {
	if m == MetricOxygen {
		return "L"
	}
	return ""
}

// ParseMetric converts a metric name into its Metric value.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oxygen":
		return MetricOxygen, nil
	case "beds":
		return MetricBeds, nil
	case "staff":
		return MetricStaff, nil
	default:
		return 0, fmt.Errorf("unknown metric %q", s)
	}
}
