package pricestore

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of samples kept per asset
const DefaultCapacity = 100

// Sample is one observed price point
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// Store holds bounded per-asset price series. It is the single piece of
// shared mutable state between the poller and request handlers; all access
// goes through the store's lock.
type Store struct {
	mu       sync.RWMutex
	capacity int
	series   map[string][]Sample
}

// New creates a store keeping at most capacity samples per asset.
// A non-positive capacity falls back to DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		series:   make(map[string][]Sample),
	}
}

// Record appends a sample to the asset's series, evicting the oldest sample
// when the series is at capacity. The series is created on first use.
func (s *Store) Record(id string, price float64, timestamp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	samples := append(s.series[id], Sample{Timestamp: timestamp, Price: price})
	if len(samples) > s.capacity {
		samples = samples[len(samples)-s.capacity:]
	}
	s.series[id] = samples
}

// Series returns a copy of the asset's current series, oldest first.
// Unknown assets yield an empty slice.
func (s *Store) Series(id string) []Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	samples := s.series[id]
	out := make([]Sample, len(samples))
	copy(out, samples)
	return out
}

// LatestPrice returns the most recent sample's price for the asset
func (s *Store) LatestPrice(id string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	samples := s.series[id]
	if len(samples) == 0 {
		return 0, false
	}
	return samples[len(samples)-1].Price, true
}

// TrackedIDs returns every asset that has at least one recorded sample
func (s *Store) TrackedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.series))
	for id := range s.series {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of tracked assets
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.series)
}
