package strategy

import "CoinSentinel/internal/model"

// Thresholds parameterizes the decision engine. All cutoffs live here so
// tuning is configuration, not re-implementation.
type Thresholds struct {
	BuyMinScore   int     `yaml:"buy_min_score"`
	SellMinScore  int     `yaml:"sell_min_score"`
	ReboundPct    float64 `yaml:"rebound_pct"`
	EntryTightPct float64 `yaml:"entry_tight_pct"`
	EntryLoosePct float64 `yaml:"entry_loose_pct"`
}

// DefaultThresholds returns the documented cutoff set.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BuyMinScore:   70,
		SellMinScore:  60,
		ReboundPct:    0.25,
		EntryTightPct: 0.35,
		EntryLoosePct: 0.8,
	}
}

// Evaluation is the decision engine's output for one snapshot.
type Evaluation struct {
	Score     int
	Factors   []model.FactorScore
	Reasons   []string
	Tentative model.Action
}

// Verdict reports whether the tentative action recommends anything.
func (e *Evaluation) Verdict() bool { return e.Tentative != model.ActionNone }

// Evaluate scores the snapshot and derives the tentative action.
//
// Scoring is additive and unconditional: every factor is evaluated and
// contributes exactly one reason string whether or not it scored, so the
// reason list always has five entries in a fixed order. Downstream consumers
// and the recorded history rely on that shape.
func Evaluate(snap *model.IndicatorSnapshot, th Thresholds) *Evaluation {
	factors := []model.FactorScore{
		scoreTrend(snap),
		scoreMomentum(snap),
		scoreEntryDistance(snap, th),
		scoreOscillator(snap),
		scoreRebound(snap, th),
	}

	score := 0
	reasons := make([]string, 0, len(factors))
	for _, f := range factors {
		score += f.Points
		reasons = append(reasons, f.Reason())
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &Evaluation{
		Score:     score,
		Factors:   factors,
		Reasons:   reasons,
		Tentative: deriveAction(snap, score, th),
	}
}

// deriveAction applies the BUY/SELL gates against the raw indicators, not
// just the score. The trend requirements make the two mutually exclusive;
// BUY takes precedence should a future change break that.
func deriveAction(snap *model.IndicatorSnapshot, score int, th Thresholds) model.Action {
	rsi, rsiOK := snap.RSIValue()

	buy := score >= th.BuyMinScore &&
		snap.Price >= snap.EMALong &&
		snap.EMAShort >= snap.EMALong &&
		snap.Price >= snap.EMAShort &&
		(!rsiOK || (rsi >= 38 && rsi <= 72)) &&
		snap.Rebound >= th.ReboundPct
	if buy {
		return model.ActionBuy
	}

	sell := score >= th.SellMinScore &&
		(snap.Price < snap.EMAShort || snap.EMAShort < snap.EMALong) &&
		(!rsiOK || rsi >= 50)
	if sell {
		return model.ActionSell
	}

	return model.ActionNone
}
