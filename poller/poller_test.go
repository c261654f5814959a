package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenboard/market-data/coingecko"
	"github.com/tokenboard/market-data/config"
	"github.com/tokenboard/market-data/pricestore"
	"github.com/tokenboard/market-data/tokeninfo"
)

type fakePriceFetcher struct {
	prices  map[string]float64
	failIDs map[string]bool
	calls   int
}

func (f *fakePriceFetcher) SimplePrice(ctx context.Context, ids []string, vsCurrency string) (coingecko.SimplePriceResponse, error) {
	f.calls++
	response := make(coingecko.SimplePriceResponse)
	for _, id := range ids {
		if f.failIDs[id] {
			return nil, errors.New("upstream unavailable")
		}
		if price, ok := f.prices[id]; ok {
			response[id] = map[string]float64{vsCurrency: price}
		}
	}
	return response, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Poller: config.PollerConfig{UpdateInterval: time.Minute},
		Prices: config.PricesConfig{SeriesCapacity: 100, Currency: "usd"},
	}
}

func allPrices() map[string]float64 {
	prices := make(map[string]float64)
	for _, id := range tokeninfo.WellKnownIDs() {
		prices[tokeninfo.UpstreamID(id)] = 1.0
	}
	prices["bitcoin"] = 60000.0
	return prices
}

func TestPollCycle_CoversWellKnownSet(t *testing.T) {
	fetcher := &fakePriceFetcher{prices: allPrices()}
	store := pricestore.New(100)
	service := NewService(testConfig(), fetcher, store)

	service.pollCycle(context.Background())

	for _, id := range tokeninfo.WellKnownIDs() {
		price, ok := store.LatestPrice(id)
		require.True(t, ok, "missing price for %s", id)
		assert.Equal(t, 1.0, price)
	}
}

func TestPollCycle_IncludesTrackedAssets(t *testing.T) {
	fetcher := &fakePriceFetcher{prices: allPrices()}
	store := pricestore.New(100)
	service := NewService(testConfig(), fetcher, store)

	// A user selection put one sample into the store earlier
	store.Record("bitcoin", 59000.0, time.Now())

	service.pollCycle(context.Background())

	samples := store.Series("bitcoin")
	require.Len(t, samples, 2)
	assert.Equal(t, 60000.0, samples[1].Price)
}

func TestPollCycle_FailureDoesNotBlockOthers(t *testing.T) {
	fetcher := &fakePriceFetcher{
		prices:  allPrices(),
		failIDs: map[string]bool{"tether": true},
	}
	store := pricestore.New(100)
	service := NewService(testConfig(), fetcher, store)

	service.pollCycle(context.Background())

	_, ok := store.LatestPrice("usdt")
	assert.False(t, ok)

	// Every other well-known asset was still refreshed
	for _, id := range tokeninfo.WellKnownIDs() {
		if id == "usdt" {
			continue
		}
		_, ok := store.LatestPrice(id)
		assert.True(t, ok, "missing price for %s", id)
	}
}

func TestFetchPrice_RecordsSample(t *testing.T) {
	fetcher := &fakePriceFetcher{prices: map[string]float64{"tether": 1.0}}
	store := pricestore.New(100)
	service := NewService(testConfig(), fetcher, store)

	price, ok := service.FetchPrice(context.Background(), "usdt")
	require.True(t, ok)
	assert.Equal(t, 1.0, price)

	// Recorded under the dashboard identifier, not the upstream one
	samples := store.Series("usdt")
	require.Len(t, samples, 1)
	assert.Equal(t, 1.0, samples[0].Price)
}

func TestFetchPrice_MissingAsset(t *testing.T) {
	fetcher := &fakePriceFetcher{prices: map[string]float64{}}
	store := pricestore.New(100)
	service := NewService(testConfig(), fetcher, store)

	_, ok := service.FetchPrice(context.Background(), "nope")
	assert.False(t, ok)
	assert.Empty(t, store.Series("nope"))
}

func TestSubscribe_NotifiedAfterCycle(t *testing.T) {
	fetcher := &fakePriceFetcher{prices: allPrices()}
	store := pricestore.New(100)
	service := NewService(testConfig(), fetcher, store)

	sub := service.Subscribe()
	defer sub.Cancel()

	service.pollCycle(context.Background())

	select {
	case <-sub.Chan():
	case <-time.After(time.Second):
		t.Fatal("expected a cycle notification")
	}
}

func TestStartStop(t *testing.T) {
	fetcher := &fakePriceFetcher{prices: allPrices()}
	store := pricestore.New(100)
	service := NewService(testConfig(), fetcher, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, service.Start(ctx))

	// The first cycle runs immediately
	assert.Eventually(t, func() bool {
		_, ok := store.LatestPrice("usdt")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	service.Stop()
}
