package model

import (
	"math"
	"time"
)

// PricePoint is a single close-price observation.
type PricePoint struct {
	Time  time.Time
	Close float64
}

// PriceSeries holds raw close prices for analysis, oldest first.
type PriceSeries struct {
	Symbol    string
	Points    []PricePoint
	FetchedAt time.Time
}

// Closes extracts the close values in series order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Sanitize returns closes with non-finite and non-positive values dropped.
// Indicator functions assume a clean series; filtering happens once, here.
func Sanitize(closes []float64) []float64 {
	out := make([]float64, 0, len(closes))
	for _, v := range closes {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		out = append(out, v)
	}
	return out
}

// IndicatorSnapshot holds all computed technical indicators for one tick.
// Derived and ephemeral; recomputed every invocation, never persisted.
type IndicatorSnapshot struct {
	Price     float64  `json:"price"`
	EMAShort  float64  `json:"ema50"`
	EMALong   float64  `json:"ema200"`
	RSI       *float64 `json:"rsi14"` // nil when the series is too short
	Change1h  float64  `json:"change1h"`
	Change24h float64  `json:"change24h"`
	Rebound   float64  `json:"rebound2h"`
}

// RSIValue returns the RSI and whether it is available.
func (s *IndicatorSnapshot) RSIValue() (float64, bool) {
	if s.RSI == nil {
		return 0, false
	}
	return *s.RSI, true
}
