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

// KrakenFetcher implements Fetcher using the Kraken public OHLC API
// with 5-minute candles.
type KrakenFetcher struct {
	BaseURL  string
	Interval int // minutes
	Client   *http.Client
}

// NewKrakenFetcher creates a fetcher with optional proxy support.
func NewKrakenFetcher(proxyURL string) *KrakenFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &KrakenFetcher{
		BaseURL:  "https://api.kraken.com/0/public",
		Interval: 5,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *KrakenFetcher) Name() string { return "kraken" }

// krakenOHLC is the response structure from the OHLC endpoint. The result map
// is keyed by the resolved pair name plus a "last" cursor; each row is
// [time, open, high, low, close, vwap, volume, count] with strings for prices.
type krakenOHLC struct {
	Error  []string                   `json:"error"`
	Result map[string]json.RawMessage `json:"result"`
}

func (f *KrakenFetcher) FetchCloses(ctx context.Context, symbol string) ([]model.PricePoint, error) {
	u := fmt.Sprintf("%s/OHLC?pair=%s&interval=%d", f.BaseURL, url.QueryEscape(symbol), f.Interval)

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: kraken fetch: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: kraken read body: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: kraken status %d: %s", ErrUpstream, resp.StatusCode, truncate(body, 160))
	}

	var parsed krakenOHLC
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: kraken decode: %v", ErrUpstream, err)
	}
	if len(parsed.Error) > 0 {
		return nil, fmt.Errorf("%w: kraken api error: %v", ErrUpstream, parsed.Error)
	}

	// The pair key varies (XBTUSD resolves to XXBTZUSD); take the first
	// non-cursor key.
	var rows [][]json.RawMessage
	for key, raw := range parsed.Result {
		if key == "last" {
			continue
		}
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("%w: kraken rows decode: %v", ErrUpstream, err)
		}
		break
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: kraken returned no candles", ErrUpstream)
	}

	points := make([]model.PricePoint, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		var ts float64
		var closeStr string
		if err := json.Unmarshal(row[0], &ts); err != nil {
			continue
		}
		if err := json.Unmarshal(row[4], &closeStr); err != nil {
			continue
		}
		var closeVal float64
		if _, err := fmt.Sscanf(closeStr, "%f", &closeVal); err != nil {
			continue
		}
		points = append(points, model.PricePoint{
			Time:  time.Unix(int64(ts), 0),
			Close: closeVal,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}
