package prediction

// MockForecaster returns preconfigured forecasts keyed by series length.
// Unknown lengths yield Fallback repeated horizon times.
type MockForecaster struct {
	ByLength map[int][]float64
	Fallback float64
	Calls    int
}

// Forecast implements Forecaster.
func (m *MockForecaster) Forecast(series []float64, horizon int) []float64 {
	m.Calls++
	if horizon < 1 {
		return nil
	}
	out := make([]float64, horizon)
	if v, ok := m.ByLength[len(series)]; ok {
		copy(out, v)
		return out
	}
	for i := range out {
		out[i] = m.Fallback
	}
	return out
}
