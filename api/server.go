package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tokenboard/market-data/catalog"
	"github.com/tokenboard/market-data/history"
	"github.com/tokenboard/market-data/poller"
	"github.com/tokenboard/market-data/pricestore"
	"github.com/tokenboard/market-data/tokeninfo"
)

// HealthChecker reports whether the upstream connection has delivered data
type HealthChecker interface {
	Healthy() bool
}

// Server exposes the market-data core to the dashboard frontend
type Server struct {
	port     string
	catalog  *catalog.Service
	resolver *tokeninfo.Resolver
	store    *pricestore.Store
	poller   *poller.Service
	history  *history.Fetcher
	upstream HealthChecker
	server   *http.Server
}

func New(port string, catalogService *catalog.Service, resolver *tokeninfo.Resolver,
	store *pricestore.Store, pollerService *poller.Service, historyFetcher *history.Fetcher,
	upstream HealthChecker) *Server {
	return &Server{
		port:     port,
		catalog:  catalogService,
		resolver: resolver,
		store:    store,
		poller:   pollerService,
		history:  historyFetcher,
		upstream: upstream,
	}
}

// Start registers routes and begins serving in the background
func (s *Server) Start(ctx context.Context) error {
	router := mux.NewRouter()

	router.HandleFunc("/api/v1/coins", s.handleCoins).Methods("GET")
	router.HandleFunc("/api/v1/search", s.handleSearch).Methods("GET")
	router.HandleFunc("/api/v1/tokens/{id}", s.handleToken).Methods("GET")
	router.HandleFunc("/api/v1/tokens/{id}/price", s.handleTokenPrice).Methods("GET")
	router.HandleFunc("/api/v1/tokens/{id}/series", s.handleTokenSeries).Methods("GET")
	router.HandleFunc("/api/v1/tokens/{id}/history", s.handleTokenHistory).Methods("GET")
	router.HandleFunc("/api/v1/tokens/{id}/live", s.handleTokenLive)

	router.HandleFunc("/health", s.handleHealth)
	router.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:    ":" + s.port,
		Handler: router,
	}

	log.Printf("Server starting at http://localhost:%s", s.port)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	return nil
}

// Stop shuts the server down, letting in-flight requests finish
func (s *Server) Stop() {
	if s.server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
