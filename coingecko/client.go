package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/tokenboard/market-data/config"
	"github.com/tokenboard/market-data/metrics"
)

const (
	coinsListPath   = "/api/v3/coins/list"
	simplePricePath = "/api/v3/simple/price"
	coinByIDPath    = "/api/v3/coins/%s"
	marketChartPath = "/api/v3/coins/%s/market_chart"
)

// Client is the CoinGecko API client used by all services. Methods degrade to
// errors, never panics; callers decide how to fall back.
type Client struct {
	cfg             *config.Config
	keyManager      *APIKeyManager
	httpClient      *HTTPClientWithRetries
	successfulFetch atomic.Bool
}

// NewClient creates a CoinGecko client. metricsWriter may be nil.
func NewClient(cfg *config.Config, metricsWriter *metrics.MetricsWriter) *Client {
	retryOpts := DefaultRetryOptions()
	retryOpts.LogPrefix = "CoinGecko"

	var handler HTTPStatusHandler
	if metricsWriter != nil {
		handler = metricsWriter
	}

	return &Client{
		cfg:        cfg,
		keyManager: NewAPIKeyManager(cfg.APITokens),
		httpClient: NewHTTPClientWithRetries(retryOpts, handler, GetRateLimiterManagerInstance()),
	}
}

// Healthy reports whether at least one fetch has succeeded
func (c *Client) Healthy() bool {
	return c.successfulFetch.Load()
}

// CoinsList fetches the full list of known coins
func (c *Client) CoinsList(ctx context.Context) ([]CoinListEntry, error) {
	body, err := c.fetchJSON(ctx, coinsListPath, nil)
	if err != nil {
		return nil, err
	}

	var entries []CoinListEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("error unmarshaling coins list response: %w", err)
	}

	c.successfulFetch.Store(true)
	return entries, nil
}

// SimplePrice fetches current prices for the given coin ids in one currency
func (c *Client) SimplePrice(ctx context.Context, ids []string, vsCurrency string) (SimplePriceResponse, error) {
	params := map[string]string{
		"ids":           strings.Join(ids, ","),
		"vs_currencies": vsCurrency,
	}

	body, err := c.fetchJSON(ctx, simplePricePath, params)
	if err != nil {
		return nil, err
	}

	var prices SimplePriceResponse
	if err := json.Unmarshal(body, &prices); err != nil {
		return nil, fmt.Errorf("error unmarshaling simple price response: %w", err)
	}

	c.successfulFetch.Store(true)
	return prices, nil
}

// CoinByID fetches descriptive metadata for a single coin
func (c *Client) CoinByID(ctx context.Context, id string) (*CoinDetail, error) {
	params := map[string]string{
		"localization":   "true",
		"tickers":        "false",
		"market_data":    "false",
		"community_data": "false",
		"sparkline":      "false",
	}

	body, err := c.fetchJSON(ctx, fmt.Sprintf(coinByIDPath, id), params)
	if err != nil {
		return nil, err
	}

	var detail CoinDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("error unmarshaling coin detail response for %s: %w", id, err)
	}

	c.successfulFetch.Store(true)
	return &detail, nil
}

// MarketChart fetches a historical price series for the trailing days window
func (c *Client) MarketChart(ctx context.Context, id, vsCurrency string, days int) (*MarketChartData, error) {
	params := map[string]string{
		"vs_currency": vsCurrency,
		"days":        strconv.Itoa(days),
	}

	body, err := c.fetchJSON(ctx, fmt.Sprintf(marketChartPath, id), params)
	if err != nil {
		return nil, err
	}

	var chart MarketChartData
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("error unmarshaling market chart response for %s: %w", id, err)
	}

	c.successfulFetch.Store(true)
	return &chart, nil
}

// fetchJSON executes a GET against the given endpoint, walking the available
// API keys until one succeeds
func (c *Client) fetchJSON(ctx context.Context, apiPath string, params map[string]string) ([]byte, error) {
	executor := func(apiKey APIKey) (interface{}, bool, error) {
		baseURL := GetApiBaseUrl(c.cfg, apiKey.Type)

		requestBuilder := NewRequestBuilder(baseURL, apiPath).
			WithApiKey(apiKey.Key, apiKey.Type)
		for key, value := range params {
			requestBuilder.With(key, value)
		}

		request, err := requestBuilder.Build(ctx)
		if err != nil {
			log.Printf("CoinGecko: Error building request for %s with key type %v: %v", apiPath, apiKey.Type, err)
			return nil, false, err
		}

		resp, body, _, err := c.httpClient.ExecuteRequest(request)
		if err != nil {
			return nil, false, err
		}
		defer resp.Body.Close()

		return body, true, nil
	}

	onFailed := CreateFailCallback(c.keyManager)
	availableKeys := c.keyManager.GetAvailableKeys()

	result, err := TryWithKeys(availableKeys, "CoinGecko", executor, onFailed)
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
