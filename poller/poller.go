package poller

import (
	"context"
	"log"
	"time"

	"github.com/tokenboard/market-data/coingecko"
	"github.com/tokenboard/market-data/config"
	"github.com/tokenboard/market-data/events"
	"github.com/tokenboard/market-data/metrics"
	"github.com/tokenboard/market-data/pricestore"
	"github.com/tokenboard/market-data/scheduler"
	"github.com/tokenboard/market-data/tokeninfo"
)

// PriceFetcher is the upstream dependency of the poller
type PriceFetcher interface {
	SimplePrice(ctx context.Context, ids []string, vsCurrency string) (coingecko.SimplePriceResponse, error)
}

// Service refreshes the current price of every tracked asset on a fixed
// period. The well-known set is always polled; any other asset that ever got
// a sample recorded (a user selection) keeps being polled too. The working
// set grows, it never shrinks.
type Service struct {
	cfg           *config.Config
	fetcher       PriceFetcher
	store         *pricestore.Store
	scheduler     *scheduler.Scheduler
	subscriptions *events.SubscriptionManager
	metricsWriter *metrics.MetricsWriter
}

// NewService creates the poller. Start must be called to begin polling.
func NewService(cfg *config.Config, fetcher PriceFetcher, store *pricestore.Store) *Service {
	s := &Service{
		cfg:           cfg,
		fetcher:       fetcher,
		store:         store,
		subscriptions: events.NewSubscriptionManager(),
		metricsWriter: metrics.NewMetricsWriter(metrics.ServicePrices),
	}
	s.scheduler = scheduler.New(cfg.Poller.UpdateInterval, s.pollCycle)
	return s
}

// Start launches the background poll loop with an immediate first cycle
func (s *Service) Start(ctx context.Context) error {
	log.Printf("Poller: Starting with interval %v", s.cfg.Poller.UpdateInterval)
	s.scheduler.Start(ctx, true)
	return nil
}

// Stop terminates the poll loop and waits for an in-flight cycle to finish
func (s *Service) Stop() {
	s.scheduler.Stop()
}

// Subscribe returns a subscription notified after every completed poll cycle
func (s *Service) Subscribe() *events.Subscription {
	return s.subscriptions.Subscribe()
}

// pollCycle refreshes every tracked asset once. Per-asset failures are logged
// and skipped; the cycle always runs to completion.
func (s *Service) pollCycle(ctx context.Context) {
	startTime := time.Now()

	wellKnown := tokeninfo.WellKnownIDs()
	polled := make(map[string]struct{}, len(wellKnown))

	for _, id := range wellKnown {
		polled[id] = struct{}{}
		s.FetchPrice(ctx, id)
	}

	// Assets selected by users are tracked in the store already; keep them
	// fresh between selections.
	for _, id := range s.store.TrackedIDs() {
		if _, ok := polled[id]; ok {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		s.FetchPrice(ctx, id)
	}

	s.metricsWriter.RecordDataFetchCycle(time.Since(startTime))
	s.metricsWriter.RecordCacheSize(s.store.Len())

	s.subscriptions.Emit(ctx)
}

// FetchPrice fetches the current price for one identifier and records it into
// the store. It returns false when the upstream call fails or omits the
// asset; the failure is logged, never propagated.
func (s *Service) FetchPrice(ctx context.Context, id string) (float64, bool) {
	coinID := tokeninfo.UpstreamID(id)
	currency := s.cfg.Prices.Currency

	prices, err := s.fetcher.SimplePrice(ctx, []string{coinID}, currency)
	if err != nil {
		log.Printf("Poller: Error fetching price for %s: %v", id, err)
		return 0, false
	}

	quote, ok := prices[coinID]
	if !ok {
		log.Printf("Poller: No price data for %s", coinID)
		return 0, false
	}

	price, ok := quote[currency]
	if !ok {
		log.Printf("Poller: No %s quote for %s", currency, coinID)
		return 0, false
	}

	s.store.Record(id, price, time.Now())
	return price, true
}
