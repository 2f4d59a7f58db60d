package calculator

import "math"

// Pct returns the percentage change from `from` to `to`.
// Returns 0 when `from` is zero or non-finite; a guard, not an error.
func Pct(from, to float64) float64 {
	if from == 0 || math.IsNaN(from) || math.IsInf(from, 0) ||
		math.IsNaN(to) || math.IsInf(to, 0) {
		return 0
	}
	return (to - from) / from * 100
}

// ChangeOverOffset returns the percentage change between the close `offset`
// positions back and the latest close. The lookback is clamped to the start
// of the series.
func ChangeOverOffset(closes []float64, offset int) float64 {
	if len(closes) == 0 || offset <= 0 {
		return 0
	}
	i := len(closes) - 1 - offset
	if i < 0 {
		i = 0
	}
	return Pct(closes[i], closes[len(closes)-1])
}

// CalculateRebound returns the percentage recovery of the latest close from
// the minimum close within the trailing window.
func CalculateRebound(closes []float64, window int) float64 {
	if len(closes) == 0 || window <= 0 {
		return 0
	}
	start := len(closes) - window
	if start < 0 {
		start = 0
	}
	low := math.Inf(1)
	for i := start; i < len(closes); i++ {
		if closes[i] < low {
			low = closes[i]
		}
	}
	return Pct(low, closes[len(closes)-1])
}
