package metrics

import (
	"fmt"

	"github.com/kilianp07/carewatch/core/factory"
	"github.com/kilianp07/carewatch/core/model"
)

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink adds a metrics sink factory identified by name.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// KnownSink reports whether a sink type has been registered.
func KnownSink(name string) bool { return sinkRegistry.Has(name) }

// NewMetricsSink creates a MetricsSink from the provided configuration.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]MetricsSink, 0, len(cfgs))
	for _, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			_ = NewMultiSink(sinks...).Close()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return NewMultiSink(sinks...), nil
}

// ValidateSinks checks that every configured sink type is registered.
func ValidateSinks(cfgs []factory.ModuleConfig) error {
	for _, c := range cfgs {
		if !sinkRegistry.Has(c.Type) {
			return fmt.Errorf("%w: unknown sink type %q (known: %v)", model.ErrInvalidConfiguration, c.Type, sinkRegistry.Names())
		}
	}
	return nil
}
