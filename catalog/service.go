package catalog

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/tokenboard/market-data/coingecko"
	"github.com/tokenboard/market-data/metrics"
)

const (
	// DefaultTTL is how long a coins list snapshot stays fresh
	DefaultTTL = 3600 * time.Second
	// MaxSearchResults caps the number of search matches returned
	MaxSearchResults = 20
	// MinQueryLength is the shortest query, in characters, that triggers a search
	MinQueryLength = 2
)

// Entry is one searchable asset of the catalog
type Entry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// CoinsLister is the upstream dependency of the catalog
type CoinsLister interface {
	CoinsList(ctx context.Context) ([]coingecko.CoinListEntry, error)
}

// Service caches the full CoinGecko coins list as a single snapshot with a
// TTL. The snapshot is replaced wholesale on refresh; a failed refresh keeps
// serving the stale snapshot.
type Service struct {
	fetcher       CoinsLister
	ttl           time.Duration
	metricsWriter *metrics.MetricsWriter

	mu          sync.Mutex
	snapshot    []Entry
	lastRefresh time.Time
}

// NewService creates a catalog service. A non-positive ttl falls back to
// DefaultTTL.
func NewService(fetcher CoinsLister, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		fetcher:       fetcher,
		ttl:           ttl,
		metricsWriter: metrics.NewMetricsWriter(metrics.ServiceCatalog),
	}
}

// ListAssets returns the current catalog snapshot, refreshing it first when
// missing or expired. On refresh failure an existing snapshot is returned
// unchanged; with no snapshot an empty list is returned and the next call
// retries immediately.
func (s *Service) ListAssets(ctx context.Context) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot != nil && time.Since(s.lastRefresh) <= s.ttl {
		return s.snapshot
	}

	entries, err := s.fetcher.CoinsList(ctx)
	if err != nil {
		log.Printf("Catalog: Error fetching coins list: %v", err)
		if s.snapshot != nil {
			// Stale but available beats empty
			return s.snapshot
		}
		return []Entry{}
	}

	snapshot := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		snapshot = append(snapshot, Entry{ID: entry.ID, Name: entry.Name, Symbol: entry.Symbol})
	}

	s.snapshot = snapshot
	s.lastRefresh = time.Now()
	s.metricsWriter.RecordCacheSize(len(snapshot))
	log.Printf("Catalog: Updated coins list snapshot with %d entries", len(snapshot))

	return s.snapshot
}

// Search returns catalog entries whose name or symbol contains the query,
// case-insensitive, in catalog order, capped at MaxSearchResults. Queries
// shorter than MinQueryLength return no results without touching the catalog.
func (s *Service) Search(ctx context.Context, query string) []Entry {
	if utf8.RuneCountInString(query) < MinQueryLength {
		return []Entry{}
	}

	query = strings.ToLower(query)
	matches := make([]Entry, 0, MaxSearchResults)

	for _, entry := range s.ListAssets(ctx) {
		if strings.Contains(strings.ToLower(entry.Name), query) ||
			strings.Contains(strings.ToLower(entry.Symbol), query) {
			matches = append(matches, entry)
			if len(matches) >= MaxSearchResults {
				break
			}
		}
	}

	return matches
}
