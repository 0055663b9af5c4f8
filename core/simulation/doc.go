// Package simulation advances the synthetic hospital resources one tick at a
// time. Each tick draws from an injected random source, clamps every metric
// to its domain, occasionally applies a shock event and appends the new
// values to the per-metric history.
//
// An Engine has a single mutator: callers must serialize Step, Reset and
// Warmup. Snapshot readers (State, History, Values) may run concurrently.
package simulation
