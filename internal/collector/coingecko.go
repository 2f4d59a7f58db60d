package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"CoinSentinel/internal/model"
)

// CoinGeckoFetcher implements Fetcher using the CoinGecko market-chart API,
// which returns ~5-minute close samples for a 1-day range.
type CoinGeckoFetcher struct {
	BaseURL string
	Days    int
	Client  *http.Client
}

// NewCoinGeckoFetcher creates a fetcher with optional proxy support.
func NewCoinGeckoFetcher(proxyURL string) *CoinGeckoFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &CoinGeckoFetcher{
		BaseURL: "https://api.coingecko.com/api/v3",
		Days:    1,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

// geckoChart is the response structure from the market_chart endpoint.
// Prices come as [timestampMillis, price] pairs.
type geckoChart struct {
	Prices [][2]float64 `json:"prices"`
}

func (f *CoinGeckoFetcher) FetchCloses(ctx context.Context, symbol string) ([]model.PricePoint, error) {
	u := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d",
		f.BaseURL, url.PathEscape(symbol), f.Days)

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: coingecko fetch: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: coingecko read body: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: coingecko status %d: %s", ErrUpstream, resp.StatusCode, truncate(body, 160))
	}

	var chart geckoChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("%w: coingecko decode: %v", ErrUpstream, err)
	}
	if len(chart.Prices) == 0 {
		return nil, fmt.Errorf("%w: coingecko returned no prices", ErrUpstream)
	}

	points := make([]model.PricePoint, 0, len(chart.Prices))
	for _, row := range chart.Prices {
		points = append(points, model.PricePoint{
			Time:  time.UnixMilli(int64(row[0])),
			Close: row[1],
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
