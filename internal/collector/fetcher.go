package collector

import (
	"context"
	"errors"

	"CoinSentinel/internal/model"
)

// ErrUpstream indicates the price feed failed or timed out. The tick produces
// no signal and the cooldown record is left untouched.
var ErrUpstream = errors.New("upstream price feed error")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchCloses returns recent close observations for the symbol,
	// oldest first, covering at least the longest configured window.
	FetchCloses(ctx context.Context, symbol string) ([]model.PricePoint, error)
	Name() string
}
