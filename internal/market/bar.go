// Package market standardizes the OHLCV bar payloads shared between data feeds and agents.
package market

import "time"

// Bar models a single OHLCV price observation. Bars are immutable once
// produced by a feed; histories are ordered by time, most recent last.
type Bar struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Open      float64   `json:"open" yaml:"open"`
	High      float64   `json:"high" yaml:"high"`
	Low       float64   `json:"low" yaml:"low"`
	Close     float64   `json:"close" yaml:"close"`
	Volume    float64   `json:"volume" yaml:"volume"`
	Symbol    string    `json:"symbol" yaml:"symbol"`
}

// Closes extracts the close prices of a bar history in order.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Last returns the most recent bar of a non-empty history.
func Last(bars []Bar) Bar {
	return bars[len(bars)-1]
}

// Tail returns the trailing n bars, or the whole history when it is shorter.
func Tail(bars []Bar, n int) []Bar {
	if n <= 0 || len(bars) <= n {
		return bars
	}
	return bars[len(bars)-n:]
}
