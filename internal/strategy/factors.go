package strategy

import (
	"fmt"
	"math"

	"CoinSentinel/internal/calculator"
	"CoinSentinel/internal/model"
)

// Factor weights. Their sum is exactly 100; the clamp in Evaluate protects
// future weight changes.
const (
	trendPoints      = 30
	momentumPoints   = 25
	entryTightPoints = 20
	entryLoosePoints = 10
	rsiCenterPoints  = 15
	rsiEdgePoints    = 6
	reboundPoints    = 10
)

// scoreTrend awards points when price holds at or above the long EMA.
func scoreTrend(snap *model.IndicatorSnapshot) model.FactorScore {
	f := model.FactorScore{Name: "trend"}
	if snap.Price >= snap.EMALong {
		f.Points = trendPoints
		f.Commentary = fmt.Sprintf("price %.2f ≥ EMA200 %.2f", snap.Price, snap.EMALong)
	} else {
		f.Commentary = fmt.Sprintf("price %.2f below EMA200 %.2f", snap.Price, snap.EMALong)
	}
	return f
}

// scoreMomentum awards points when the short EMA holds at or above the long EMA.
func scoreMomentum(snap *model.IndicatorSnapshot) model.FactorScore {
	f := model.FactorScore{Name: "momentum"}
	if snap.EMAShort >= snap.EMALong {
		f.Points = momentumPoints
		f.Commentary = fmt.Sprintf("EMA50 %.2f ≥ EMA200 %.2f", snap.EMAShort, snap.EMALong)
	} else {
		f.Commentary = fmt.Sprintf("EMA50 %.2f below EMA200 %.2f", snap.EMAShort, snap.EMALong)
	}
	return f
}

// scoreEntryDistance awards points the closer price sits to the short EMA.
func scoreEntryDistance(snap *model.IndicatorSnapshot, th Thresholds) model.FactorScore {
	dist := math.Abs(calculator.Pct(snap.Price, snap.EMAShort))
	f := model.FactorScore{Name: "entry distance", Commentary: fmt.Sprintf("%.2f%% from EMA50", dist)}
	switch {
	case dist <= th.EntryTightPct:
		f.Points = entryTightPoints
	case dist <= th.EntryLoosePct:
		f.Points = entryLoosePoints
	}
	return f
}

// scoreOscillator awards points for RSI in the healthy entry band; a reduced
// award for the adjacent bands. RSI unavailable contributes a distinct reason.
func scoreOscillator(snap *model.IndicatorSnapshot) model.FactorScore {
	f := model.FactorScore{Name: "oscillator"}
	rsi, ok := snap.RSIValue()
	if !ok {
		f.Commentary = "RSI unavailable, series too short"
		return f
	}
	f.Commentary = fmt.Sprintf("RSI14 %.1f", rsi)
	switch {
	case rsi >= 42 && rsi <= 62:
		f.Points = rsiCenterPoints
	case (rsi > 62 && rsi <= 72) || (rsi >= 35 && rsi < 42):
		f.Points = rsiEdgePoints
	}
	return f
}

// scoreRebound awards points when price has recovered from the recent low by
// at least the configured threshold.
func scoreRebound(snap *model.IndicatorSnapshot, th Thresholds) model.FactorScore {
	f := model.FactorScore{Name: "rebound", Commentary: fmt.Sprintf("%.2f%% off the 2h low", snap.Rebound)}
	if snap.Rebound >= th.ReboundPct {
		f.Points = reboundPoints
	}
	return f
}
