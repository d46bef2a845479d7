// Package indicators provides the shared numeric helpers (moving averages,
// oscillators, rolling statistics) used by every agent implementation.
package indicators

import "math"

// SMA returns the simple moving average of the trailing period values.
// It returns 0 when fewer than period values are available.
func SMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}
	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// EMA returns the exponential moving average over the trailing period values,
// seeded with the SMA of the first period values.
func EMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}
	ema := SMA(values[:period], period)
	k := 2.0 / (float64(period) + 1)
	for _, v := range values[period:] {
		ema = v*k + ema*(1-k)
	}
	return ema
}

// RSI computes the relative strength index over the trailing period price
// changes. All-gain input yields 100, all-loss input yields 0, and histories
// shorter than period+1 yield the neutral value 50.
func RSI(values []float64, period int) float64 {
	if period <= 0 || len(values) < period+1 {
		return 50
	}
	var gains, losses float64
	window := values[len(values)-period-1:]
	for i := 1; i < len(window); i++ {
		diff := window[i] - window[i-1]
		if diff > 0 {
			gains += diff
		} else {
			losses -= diff
		}
	}
	if losses == 0 {
		if gains == 0 {
			return 50
		}
		return 100
	}
	rs := gains / losses
	return 100 - 100/(1+rs)
}

// MACD returns the MACD line, signal line, and histogram using the
// conventional 12/26/9 EMAs.
func MACD(values []float64) (macd, sig, hist float64) {
	if len(values) < 26 {
		return 0, 0, 0
	}
	macd = EMA(values, 12) - EMA(values, 26)

	// Rebuild the MACD series over the tail so the signal line has
	// something to smooth.
	n := len(values) - 26 + 1
	if n > 9 {
		n = 9
	}
	series := make([]float64, 0, n)
	for i := len(values) - n; i < len(values); i++ {
		sub := values[:i+1]
		series = append(series, EMA(sub, 12)-EMA(sub, 26))
	}
	if len(series) > 0 {
		var sum float64
		for _, v := range series {
			sum += v
		}
		sig = sum / float64(len(series))
	}
	return macd, sig, macd - sig
}

// Mean returns the arithmetic mean, 0 for empty input.
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

// StdDev returns the population standard deviation, 0 for fewer than two values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// ZScore returns (value - mean) / std over the supplied window, with the
// degenerate std == 0 case pinned to 0 rather than a division fault.
func ZScore(value float64, window []float64) float64 {
	std := StdDev(window)
	if std == 0 {
		return 0
	}
	return (value - Mean(window)) / std
}

// Correlation returns the Pearson correlation of two equal-length series,
// 0 when either series is degenerate.
func Correlation(a, b []float64) float64 {
	n := len(a)
	if n != len(b) || n < 2 {
		return 0
	}
	meanA, meanB := Mean(a), Mean(b)
	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

// OLS fits y = alpha + beta*x by ordinary least squares. ok is false when the
// regressor is degenerate (zero variance or mismatched input).
func OLS(y, x []float64) (alpha, beta float64, ok bool) {
	n := len(x)
	if n != len(y) || n < 2 {
		return 0, 0, false
	}
	meanX, meanY := Mean(x), Mean(y)
	var cov, varX float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		cov += dx * (y[i] - meanY)
		varX += dx * dx
	}
	if varX == 0 {
		return 0, 0, false
	}
	beta = cov / varX
	alpha = meanY - beta*meanX
	return alpha, beta, true
}
