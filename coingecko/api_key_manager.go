package coingecko

import (
	"log"
	"sync"
	"time"

	"github.com/tokenboard/market-data/config"
)

// KeyType defines the API key type
type KeyType int

const (
	// NoKey means no API key is available
	NoKey KeyType = iota
	// ProKey means using a Pro API key
	ProKey
	// DemoKey means using a demo API key
	DemoKey
)

// APIKey represents an API key with its type
type APIKey struct {
	Key  string
	Type KeyType
}

// APIKeyManager tracks which CoinGecko keys are usable. A key that failed is
// put into backoff and excluded from the available list until the backoff
// expires. The empty "no key" entry is always available as the last resort.
type APIKeyManager struct {
	apiTokens   *config.APITokens
	lastFailed  map[string]time.Time
	backoffTime time.Duration
	mu          sync.RWMutex
}

// NewAPIKeyManager creates a new API key manager
func NewAPIKeyManager(apiTokens *config.APITokens) *APIKeyManager {
	return &APIKeyManager{
		apiTokens:   apiTokens,
		lastFailed:  make(map[string]time.Time),
		backoffTime: 5 * time.Minute,
	}
}

func (m *APIKeyManager) isKeyInBackoff(key string) bool {
	if key == "" {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if lastFailTime, exists := m.lastFailed[key]; exists {
		return time.Since(lastFailTime) < m.backoffTime
	}

	return false
}

func (m *APIKeyManager) getKeysOfType(keyType KeyType) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.apiTokens == nil {
		return []string{}
	}

	switch keyType {
	case ProKey:
		return append([]string{}, m.apiTokens.Tokens...)
	case DemoKey:
		return append([]string{}, m.apiTokens.DemoTokens...)
	}

	return []string{}
}

// GetAvailableKeys returns Pro keys not in backoff (a single Pro key is kept
// even while in backoff), then Demo keys not in backoff, then the "no key"
// entry.
func (m *APIKeyManager) GetAvailableKeys() []APIKey {
	availableKeys := []APIKey{}

	proKeys := m.getKeysOfType(ProKey)

	if len(proKeys) == 1 {
		availableKeys = append(availableKeys, APIKey{Key: proKeys[0], Type: ProKey})
	} else if len(proKeys) > 1 {
		for _, key := range proKeys {
			if !m.isKeyInBackoff(key) {
				availableKeys = append(availableKeys, APIKey{Key: key, Type: ProKey})
			}
		}
	}

	demoKeys := m.getKeysOfType(DemoKey)
	for _, key := range demoKeys {
		if !m.isKeyInBackoff(key) {
			availableKeys = append(availableKeys, APIKey{Key: key, Type: DemoKey})
		}
	}

	availableKeys = append(availableKeys, APIKey{Key: "", Type: NoKey})

	return availableKeys
}

// MarkKeyAsFailed marks a key as non-working for the backoff duration
func (m *APIKeyManager) MarkKeyAsFailed(key string) {
	if key == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastFailed[key] = time.Now()
	log.Printf("APIKeyManager: Marked key as failed for %v", m.backoffTime)
}
