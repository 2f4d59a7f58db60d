package calculator

import "errors"

// ErrInsufficientData is returned when a series is too short for the
// requested indicator. Callers degrade to a neutral signal instead of failing.
var ErrInsufficientData = errors.New("insufficient data")

// CalculateEMASeries computes the exponential moving average over the given
// closes, seeded with the first value. Returns a series of the same length.
func CalculateEMASeries(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(closes) == 0 {
		return nil, ErrInsufficientData
	}
	k := 2.0 / float64(period+1)
	out := make([]float64, len(closes))
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = closes[i]*k + out[i-1]*(1-k)
	}
	return out, nil
}

// CalculateEMA returns only the latest EMA value.
func CalculateEMA(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(closes) == 0 {
		return 0, ErrInsufficientData
	}
	k := 2.0 / float64(period+1)
	ema := closes[0]
	for i := 1; i < len(closes); i++ {
		ema = closes[i]*k + ema*(1-k)
	}
	return ema, nil
}
