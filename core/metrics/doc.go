// Package metrics defines the sinks that export simulation ticks and
// forecasts to observability backends. Sinks like PromSink, InfluxSink and
// MQTTSink (see infra/metrics) record TickEvents and, when they implement
// ForecastRecorder, ForecastEvents. NewMetricsSink builds the configured
// sinks through the factory registry and combines several of them in a
// MultiSink.
package metrics
