package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"forex_pilot/internal/models"
)

// DefaultBaseURL is the Twelve Data REST endpoint.
const DefaultBaseURL = "https://api.twelvedata.com"

// TwelveDataClient fetches forex candles from the Twelve Data
// time_series endpoint. Any upstream failure degrades to the synthetic
// generator; the client never returns an unusable series.
type TwelveDataClient struct {
	apiKey     string
	baseURL    string
	interval   string
	httpClient *http.Client
	fallback   *Synthetic
}

// NewTwelveDataClient creates a client for the given API key. interval
// is a Twelve Data interval string such as "5min".
func NewTwelveDataClient(apiKey, interval string) *TwelveDataClient {
	if interval == "" {
		interval = "5min"
	}
	return &TwelveDataClient{
		apiKey:   apiKey,
		baseURL:  DefaultBaseURL,
		interval: interval,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		fallback: NewSynthetic(),
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func (c *TwelveDataClient) WithBaseURL(u string) *TwelveDataClient {
	c.baseURL = u
	return c
}

// apiValue is one bar in the time_series response. Twelve Data encodes
// every number as a string.
type apiValue struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume"`
}

type seriesResponse struct {
	Values  []apiValue `json:"values"`
	Status  string     `json:"status"`
	Message string     `json:"message"`
}

// Series fetches count candles for symbol, oldest first. On any error
// (network, API error payload, parse) it returns a synthetic series and
// records the reason.
func (c *TwelveDataClient) Series(ctx context.Context, symbol string, count int) SeriesResult {
	candles, err := c.fetchSeries(ctx, symbol, count)
	if err != nil {
		log.Printf("Twelve Data fetch failed for %s, using synthetic series: %v", symbol, err)
		return SeriesResult{
			Candles:   c.fallback.Generate(symbol, count),
			Synthetic: true,
			Reason:    err.Error(),
		}
	}
	return SeriesResult{Candles: candles}
}

// LatestPrice returns the close of the most recent candle.
func (c *TwelveDataClient) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	res := c.Series(ctx, symbol, 1)
	if len(res.Candles) == 0 {
		return 0, fmt.Errorf("no candles for %s", symbol)
	}
	return res.Candles[len(res.Candles)-1].Close, nil
}

func (c *TwelveDataClient) fetchSeries(ctx context.Context, symbol string, count int) ([]models.Candle, error) {
	if count <= 0 {
		count = 100
	}

	params := url.Values{}
	params.Set("symbol", normalizeSymbol(symbol))
	params.Set("interval", c.interval)
	params.Set("outputsize", strconv.Itoa(count))
	params.Set("apikey", c.apiKey)
	params.Set("format", "JSON")

	apiURL := fmt.Sprintf("%s/time_series?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var sr seriesResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(sr.Values) == 0 {
		if sr.Message != "" {
			return nil, fmt.Errorf("API error: %s", sr.Message)
		}
		return nil, fmt.Errorf("empty series for %s", symbol)
	}

	candles := make([]models.Candle, 0, len(sr.Values))
	for _, v := range sr.Values {
		candle, err := v.toCandle()
		if err != nil {
			// One bad bar is dropped, not fatal for the series.
			log.Printf("Skipping malformed candle for %s: %v", symbol, err)
			continue
		}
		candles = append(candles, candle)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("no parseable candles for %s", symbol)
	}

	// The API returns newest first; the indicators want oldest first.
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Time.Before(candles[j].Time)
	})
	return candles, nil
}

func (v apiValue) toCandle() (models.Candle, error) {
	ts, err := parseDatetime(v.Datetime)
	if err != nil {
		return models.Candle{}, err
	}

	c := models.Candle{Time: ts}
	for _, f := range []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"open", v.Open, &c.Open},
		{"high", v.High, &c.High},
		{"low", v.Low, &c.Low},
		{"close", v.Close, &c.Close},
	} {
		val, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("bad %s %q", f.name, f.raw)
		}
		*f.dst = val
	}

	// Forex bars frequently omit volume.
	if v.Volume != "" {
		if vol, err := strconv.ParseFloat(v.Volume, 64); err == nil {
			c.Volume = vol
		}
	}
	return c, nil
}

func parseDatetime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02", time.RFC3339} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad datetime %q", s)
}

// normalizeSymbol converts "EUR/USD" into the API's "EURUSD" form.
func normalizeSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "")
}
