package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tokenboard/market-data/api"
	"github.com/tokenboard/market-data/catalog"
	"github.com/tokenboard/market-data/coingecko"
	"github.com/tokenboard/market-data/config"
	"github.com/tokenboard/market-data/history"
	"github.com/tokenboard/market-data/metrics"
	"github.com/tokenboard/market-data/poller"
	"github.com/tokenboard/market-data/pricestore"
	"github.com/tokenboard/market-data/tokeninfo"
)

func main() {
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatal("Error loading config:", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, stopping services...")
		cancel()
	}()

	coingecko.GetRateLimiterManagerInstance().SetConfig(cfg.APIKeys)

	client := coingecko.NewClient(cfg, metrics.NewMetricsWriter(metrics.ServicePrices))

	store := pricestore.New(cfg.Prices.SeriesCapacity)
	catalogService := catalog.NewService(client, cfg.Catalog.TTL)
	resolver := tokeninfo.NewResolver(client)
	historyFetcher := history.NewFetcher(client, cfg.Prices.Currency)

	pollerService := poller.NewService(cfg, client, store)
	if err := pollerService.Start(ctx); err != nil {
		log.Fatal("Failed to start poller:", err)
	}
	defer pollerService.Stop()

	// Warm the catalog snapshot so the first search is fast
	go catalogService.ListAssets(ctx)

	// Get port from environment or use config default
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	server := api.New(port, catalogService, resolver, store, pollerService, historyFetcher, client)
	if err := server.Start(ctx); err != nil {
		log.Fatal("Server failed:", err)
	}
	defer server.Stop()

	<-ctx.Done()
}
