// Package scheduler drives a simulation engine at a fixed cadence.
// The Controller serializes every tick, so an engine never sees
// overlapping steps, and supports pause, resume, interval changes and reset
// while running. Tick may be called directly for deterministic driving.
package scheduler
