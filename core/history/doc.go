// Package history keeps a bounded, chronologically ordered window of samples
// for each tracked metric. When a series is full the oldest sample is
// dropped to make room for the new one.
package history
