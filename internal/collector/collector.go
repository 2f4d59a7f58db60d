package collector

import (
	"context"
	"fmt"
	"time"

	"CoinSentinel/internal/calculator"
	"CoinSentinel/internal/model"
)

// Windows holds the indicator window sizes and index offsets applied to the
// fetched series. Offsets are index deltas at the feed's sample interval
// (12 samples ≈ 1h and 24 samples ≈ 2h on 5-minute candles).
type Windows struct {
	EMAShort      int `yaml:"ema_short"`
	EMALong       int `yaml:"ema_long"`
	RSIPeriod     int `yaml:"rsi_period"`
	OneHourOffset int `yaml:"one_hour_offset"`
	OneDayOffset  int `yaml:"one_day_offset"`
	ReboundWindow int `yaml:"rebound_window"`
}

// DefaultWindows matches 5-minute sampling over a 1-day range.
func DefaultWindows() Windows {
	return Windows{
		EMAShort:      50,
		EMALong:       200,
		RSIPeriod:     14,
		OneHourOffset: 12,
		OneDayOffset:  287,
		ReboundWindow: 24,
	}
}

// MinSeriesLen is the shortest sanitized series the indicators accept:
// the largest window plus one.
func (w Windows) MinSeriesLen() int {
	max := w.EMAShort
	for _, n := range []int{w.EMALong, w.RSIPeriod, w.ReboundWindow} {
		if n > max {
			max = n
		}
	}
	return max + 1
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Closes []float64
	Err    error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCloses(_ context.Context, _ string) ([]model.PricePoint, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	points := make([]model.PricePoint, len(m.Closes))
	base := time.Now().Add(-time.Duration(len(m.Closes)) * 5 * time.Minute)
	for i, c := range m.Closes {
		points[i] = model.PricePoint{Time: base.Add(time.Duration(i) * 5 * time.Minute), Close: c}
	}
	return points, nil
}

// Collector orchestrates data fetching, sanitizing, and indicator computation.
type Collector struct {
	Fetcher Fetcher
	Symbol  string
	Windows Windows
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol string, windows Windows) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol, Windows: windows}
}

// Collect fetches the close series, drops invalid values, and computes all
// indicators. A feed failure surfaces as ErrUpstream; a series shorter than
// the minimum after filtering surfaces as calculator.ErrInsufficientData.
func (c *Collector) Collect(ctx context.Context) (*model.PriceSeries, *model.IndicatorSnapshot, error) {
	points, err := c.Fetcher.FetchCloses(ctx, c.Symbol)
	if err != nil {
		return nil, nil, err
	}

	series := &model.PriceSeries{Symbol: c.Symbol, Points: points, FetchedAt: time.Now()}
	closes := model.Sanitize(series.Closes())
	if len(closes) < c.Windows.MinSeriesLen() {
		return series, nil, fmt.Errorf("%w: %d closes after filtering, need %d",
			calculator.ErrInsufficientData, len(closes), c.Windows.MinSeriesLen())
	}

	emaShort, err := calculator.CalculateEMA(closes, c.Windows.EMAShort)
	if err != nil {
		return series, nil, err
	}
	emaLong, err := calculator.CalculateEMA(closes, c.Windows.EMALong)
	if err != nil {
		return series, nil, err
	}

	snap := &model.IndicatorSnapshot{
		Price:     closes[len(closes)-1],
		EMAShort:  emaShort,
		EMALong:   emaLong,
		Change1h:  calculator.ChangeOverOffset(closes, c.Windows.OneHourOffset),
		Change24h: calculator.ChangeOverOffset(closes, c.Windows.OneDayOffset),
		Rebound:   calculator.CalculateRebound(closes, c.Windows.ReboundWindow),
	}

	if rsi, err := calculator.CalculateRSI(closes, c.Windows.RSIPeriod); err == nil {
		snap.RSI = &rsi
	}

	return series, snap, nil
}
