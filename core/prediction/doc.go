// Package prediction extrapolates metric histories a few ticks ahead.
// The default model is an ordinary least-squares line fitted against the
// sample index; short histories produce a flat forecast instead.
package prediction
