package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tokenboard/market-data/pricestore"
	"github.com/tokenboard/market-data/tokeninfo"
)

const defaultHistoryDays = 30

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("API: Error encoding response: %v", err)
	}
}

// handleCoins returns the full catalog snapshot
func (s *Server) handleCoins(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.catalog.ListAssets(r.Context()))
}

// handleSearch returns catalog entries matching the q parameter
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	writeJSON(w, s.catalog.Search(r.Context(), query))
}

type tokenResponse struct {
	ID       string               `json:"id"`
	Category tokeninfo.Category   `json:"category"`
	Info     tokeninfo.Descriptor `json:"info"`
	Price    *float64             `json:"price"`
}

// handleToken returns the info panel payload: descriptor, category and the
// latest known price
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	resp := tokenResponse{
		ID:       id,
		Category: tokeninfo.CategoryOf(id),
		Info:     s.resolver.Resolve(r.Context(), id),
	}

	if price, ok := s.store.LatestPrice(id); ok {
		resp.Price = &price
	}

	writeJSON(w, resp)
}

type priceResponse struct {
	ID    string   `json:"id"`
	Price *float64 `json:"price"`
}

// handleTokenPrice fetches a fresh price from upstream and records it into
// the store, so newly selected tokens join the poll set immediately
func (s *Server) handleTokenPrice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	resp := priceResponse{ID: id}
	if price, ok := s.poller.FetchPrice(r.Context(), id); ok {
		resp.Price = &price
	}

	writeJSON(w, resp)
}

type seriesResponse struct {
	ID      string              `json:"id"`
	Samples []pricestore.Sample `json:"samples"`
}

// handleTokenSeries returns the live chart series for an asset
func (s *Server) handleTokenSeries(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	writeJSON(w, seriesResponse{ID: id, Samples: s.store.Series(id)})
}

// handleTokenHistory returns daily OHLC candles for the days window
func (s *Server) handleTokenHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	days := defaultHistoryDays
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid days parameter", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	writeJSON(w, s.history.FetchHistory(r.Context(), id, days))
}

// handleHealth reports service liveness and upstream connectivity
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":           "ok",
		"upstream_healthy": s.upstream.Healthy(),
		"tracked_assets":   s.store.Len(),
	})
}
