// Package stats holds the pure series math behind the trend and forecast
// endpoints. Everything here operates on plain slices with no database or
// clock dependency.
package stats

import "math"

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// MovingAverage computes a trailing moving average with window
// min(7, len(values)). The first window-1 positions have no defined
// average and are returned as nil rather than a partial mean.
func MovingAverage(values []int) []*float64 {
	n := len(values)
	out := make([]*float64, n)
	if n == 0 {
		return out
	}

	window := 7
	if n < window {
		window = n
	}

	for i := window - 1; i < n; i++ {
		var sum int
		for _, v := range values[i-window+1 : i+1] {
			sum += v
		}
		avg := round2(float64(sum) / float64(window))
		out[i] = &avg
	}
	return out
}

// ChangeRates computes the period-over-period percentage change for each
// point. The first point has no previous period and is nil. A zero
// previous value yields 100 when the current value is positive, else 0.
func ChangeRates(values []int) []*float64 {
	out := make([]*float64, len(values))
	for i := 1; i < len(values); i++ {
		var rate float64
		if values[i-1] == 0 {
			if values[i] > 0 {
				rate = 100.0
			}
		} else {
			rate = round2(float64(values[i]-values[i-1]) / float64(values[i-1]) * 100)
		}
		r := rate
		out[i] = &r
	}
	return out
}

// ClassifyTrend compares the last of the final three points against the
// first of those three. More than a 10% rise classifies as increasing,
// more than a 10% drop as decreasing, anything in between as stable.
// Fewer than three points is insufficient data.
func ClassifyTrend(values []int) string {
	if len(values) < 3 {
		return "insufficient_data"
	}
	first := float64(values[len(values)-3])
	last := float64(values[len(values)-1])
	switch {
	case last > first*1.1:
		return "increasing"
	case last < first*0.9:
		return "decreasing"
	default:
		return "stable"
	}
}

// LinearForecast fits an ordinary least-squares line over the index
// positions 0..n-1 and projects the next `horizon` points. Negative
// projections are clamped to zero. Fewer than two points (a degenerate
// fit) yields an empty forecast.
func LinearForecast(values []int, horizon int) []int {
	n := len(values)
	if n < 2 || horizon <= 0 {
		return []int{}
	}

	xMean := float64(n-1) / 2
	var sum int
	for _, v := range values {
		sum += v
	}
	yMean := float64(sum) / float64(n)

	var numerator, denominator float64
	for i, v := range values {
		dx := float64(i) - xMean
		numerator += dx * (float64(v) - yMean)
		denominator += dx * dx
	}
	if denominator == 0 {
		return []int{}
	}

	slope := numerator / denominator
	intercept := yMean - slope*xMean

	forecast := make([]int, 0, horizon)
	for i := 0; i < horizon; i++ {
		projected := intercept + slope*float64(n+i)
		if projected < 0 {
			projected = 0
		}
		forecast = append(forecast, int(math.Round(projected)))
	}
	return forecast
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
