package history

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/tokenboard/market-data/coingecko"
	"github.com/tokenboard/market-data/metrics"
	"github.com/tokenboard/market-data/tokeninfo"
)

// Candle is a one-day open-high-low-close aggregate
type Candle struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// ChartFetcher is the upstream dependency of the history fetcher
type ChartFetcher interface {
	MarketChart(ctx context.Context, id, vsCurrency string, days int) (*coingecko.MarketChartData, error)
}

// Fetcher reshapes upstream market chart series into daily candles. It is
// stateless: every call fetches and resamples fresh data.
type Fetcher struct {
	fetcher       ChartFetcher
	currency      string
	metricsWriter *metrics.MetricsWriter
}

// NewFetcher creates a history fetcher quoting in the given currency
func NewFetcher(fetcher ChartFetcher, currency string) *Fetcher {
	return &Fetcher{
		fetcher:       fetcher,
		currency:      currency,
		metricsWriter: metrics.NewMetricsWriter(metrics.ServiceHistory),
	}
}

// FetchHistory returns daily candles for the trailing days window in
// ascending date order. Upstream failures and empty series both yield an
// empty slice; callers treat that as "no data".
func (f *Fetcher) FetchHistory(ctx context.Context, id string, days int) []Candle {
	startTime := time.Now()
	coinID := tokeninfo.UpstreamID(id)

	chart, err := f.fetcher.MarketChart(ctx, coinID, f.currency, days)
	if err != nil {
		log.Printf("History: Error fetching market chart for %s: %v", id, err)
		return []Candle{}
	}

	candles := resampleDaily(chart.Prices)
	f.metricsWriter.RecordDataFetchCycle(time.Since(startTime))

	return candles
}

// resampleDaily groups (timestampMillis, price) pairs by UTC calendar day and
// computes one candle per day. Samples arrive in chronological order from the
// upstream, so first/last per day are open/close.
func resampleDaily(prices [][2]float64) []Candle {
	if len(prices) == 0 {
		return []Candle{}
	}

	byDay := make(map[time.Time]*Candle)
	for _, point := range prices {
		ts := time.UnixMilli(int64(point[0])).UTC()
		price := point[1]
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)

		candle, ok := byDay[day]
		if !ok {
			byDay[day] = &Candle{Date: day, Open: price, High: price, Low: price, Close: price}
			continue
		}

		if price > candle.High {
			candle.High = price
		}
		if price < candle.Low {
			candle.Low = price
		}
		candle.Close = price
	}

	candles := make([]Candle, 0, len(byDay))
	for _, candle := range byDay {
		candles = append(candles, *candle)
	}
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Date.Before(candles[j].Date)
	})

	return candles
}
