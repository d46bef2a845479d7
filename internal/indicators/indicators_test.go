package indicators

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	if got := SMA(values, 3); !almostEqual(got, 4, 1e-9) {
		t.Fatalf("expected trailing SMA 4, got %v", got)
	}
	if got := SMA(values, 10); got != 0 {
		t.Fatalf("expected 0 for short input, got %v", got)
	}
}

func TestRSIExtremes(t *testing.T) {
	up := make([]float64, 20)
	down := make([]float64, 20)
	for i := range up {
		up[i] = float64(100 + i)
		down[i] = float64(100 - i)
	}
	if got := RSI(up, 14); got != 100 {
		t.Fatalf("all-gain RSI should be 100, got %v", got)
	}
	if got := RSI(down, 14); got != 0 {
		t.Fatalf("all-loss RSI should be 0, got %v", got)
	}
	if got := RSI(up[:5], 14); got != 50 {
		t.Fatalf("short history RSI should be neutral 50, got %v", got)
	}
}

func TestZScoreDegenerateStd(t *testing.T) {
	flat := []float64{5, 5, 5, 5}
	if got := ZScore(5, flat); got != 0 {
		t.Fatalf("zero-std window must yield z 0, got %v", got)
	}
}

func TestZScore(t *testing.T) {
	window := []float64{1, 2, 3, 4, 5}
	z := ZScore(5, window)
	if !almostEqual(z, 2/math.Sqrt(2), 1e-9) {
		t.Fatalf("unexpected z %v", z)
	}
}

func TestCorrelation(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{2, 4, 6, 8}
	if got := Correlation(a, b); !almostEqual(got, 1, 1e-9) {
		t.Fatalf("expected perfect correlation, got %v", got)
	}
	c := []float64{4, 3, 2, 1}
	if got := Correlation(a, c); !almostEqual(got, -1, 1e-9) {
		t.Fatalf("expected perfect anticorrelation, got %v", got)
	}
	flat := []float64{7, 7, 7, 7}
	if got := Correlation(a, flat); got != 0 {
		t.Fatalf("degenerate series must yield 0, got %v", got)
	}
}

func TestOLS(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{5, 7, 9, 11} // y = 3 + 2x
	alpha, beta, ok := OLS(y, x)
	if !ok {
		t.Fatalf("expected fit to succeed")
	}
	if !almostEqual(alpha, 3, 1e-9) || !almostEqual(beta, 2, 1e-9) {
		t.Fatalf("unexpected fit alpha=%v beta=%v", alpha, beta)
	}

	flat := []float64{1, 1, 1, 1}
	if _, _, ok := OLS(y, flat); ok {
		t.Fatalf("degenerate regressor must fail")
	}
}

func TestMACDShortInput(t *testing.T) {
	macd, sig, hist := MACD(make([]float64, 10))
	if macd != 0 || sig != 0 || hist != 0 {
		t.Fatalf("short input MACD must be zeroed")
	}
}
