package prediction

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/carewatch/core/model"
)

// DefaultHorizon is the number of future steps forecast when unset.
const DefaultHorizon = 6

// minTrendSamples is the shortest series a line is fitted to.
const minTrendSamples = 3

// Forecaster predicts the next horizon values of a series.
type Forecaster interface {
	// Forecast returns horizon values for steps t+1..t+horizon. It returns
	// nil when horizon is not positive.
	Forecast(series []float64, horizon int) []float64
}

// Source exposes the chronological values of each metric.
type Source interface {
	Values(m model.Metric) []float64
}

// LinearTrend fits an OLS line over the sample index.
// Predictions are floored at zero and rounded to integers; no upper bound
// is applied even for bounded metrics.
type LinearTrend struct{}

// Forecast implements Forecaster.
func (LinearTrend) Forecast(series []float64, horizon int) []float64 {
	return Predict(series, horizon)
}

// Predict extrapolates series horizon steps ahead.
// Fewer than three samples yield horizon copies of the last sample floored
// at zero, or zeros for an empty series.
func Predict(series []float64, horizon int) []float64 {
	if horizon < 1 {
		return nil
	}
	out := make([]float64, horizon)
	n := len(series)
	if n < minTrendSamples {
		last := 0.0
		if n > 0 {
			last = math.Max(0, series[n-1])
		}
		for i := range out {
			out[i] = last
		}
		return out
	}

	slope, intercept := fitLine(series)
	for s := 1; s <= horizon; s++ {
		v := intercept + slope*float64(n-1+s)
		out[s-1] = math.Round(math.Max(0, v))
	}
	return out
}

// fitLine returns the OLS slope and intercept of y against x = 0..n-1.
// A zero x variance yields a flat line through the mean.
func fitLine(y []float64) (slope, intercept float64) {
	n := len(y)
	x := make([]float64, n)
	floats.Span(x, 0, float64(n-1))
	xMean := stat.Mean(x, nil)
	yMean := stat.Mean(y, nil)

	dx := make([]float64, n)
	copy(dx, x)
	floats.AddConst(-xMean, dx)
	dy := make([]float64, n)
	copy(dy, y)
	floats.AddConst(-yMean, dy)

	num := floats.Dot(dx, dy)
	den := floats.Dot(dx, dx)
	if den != 0 {
		slope = num / den
	}
	intercept = yMean - slope*xMean
	return slope, intercept
}

// ForecastAll runs f over every metric of src.
func ForecastAll(src Source, f Forecaster, horizon int) []model.Forecast {
	res := make([]model.Forecast, 0, len(model.Metrics()))
	for _, m := range model.Metrics() {
		res = append(res, model.Forecast{Metric: m, Values: f.Forecast(src.Values(m), horizon)})
	}
	return res
}
