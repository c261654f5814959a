package coingecko

import (
	"math"
	"net/url"
	"sync"

	"github.com/tokenboard/market-data/config"
	"golang.org/x/time/rate"
)

// Defaults in requests per minute, used when config is not provided
const (
	defaultProRPM   = 500
	defaultDemoRPM  = 30
	defaultNoKeyRPM = 30
)

// RateLimiterManager hands out a shared rate limiter per API key so that all
// services together stay under the per-key CoinGecko quota.
type RateLimiterManager struct {
	mu           sync.RWMutex
	keyToLimiter map[string]*rate.Limiter
	config       config.APIKeyConfig
}

var (
	managerOnce   sync.Once
	globalManager *RateLimiterManager
)

// GetRateLimiterManagerInstance returns the global singleton RateLimiterManager
func GetRateLimiterManagerInstance() *RateLimiterManager {
	managerOnce.Do(func() {
		globalManager = &RateLimiterManager{
			keyToLimiter: make(map[string]*rate.Limiter),
			config:       config.APIKeyConfig{},
		}
	})
	return globalManager
}

// SetConfig applies rate limit settings. Existing limiters are rebuilt lazily
// on next lookup.
func (m *RateLimiterManager) SetConfig(cfg config.APIKeyConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = cfg
	m.keyToLimiter = make(map[string]*rate.Limiter)
}

// GetLimiterForURL inspects the URL to determine the key and type and returns
// the appropriate limiter. Unrelated hosts (test servers, proxies) get no
// limiter.
func (m *RateLimiterManager) GetLimiterForURL(u *url.URL) *rate.Limiter {
	if m == nil || u == nil {
		return nil
	}

	query := u.Query()

	if v := query.Get("x_cg_pro_api_key"); v != "" {
		return m.getLimiterForKey(v, ProKey)
	}
	if v := query.Get("x_cg_demo_api_key"); v != "" {
		return m.getLimiterForKey(v, DemoKey)
	}

	host := u.Hostname()
	if host == "api.coingecko.com" || host == "pro-api.coingecko.com" {
		return m.getLimiterForKey("", NoKey)
	}

	return nil
}

func (m *RateLimiterManager) getLimiterForKey(key string, keyType KeyType) *rate.Limiter {
	mapKey := keyTypeString(keyType) + "|" + key

	m.mu.RLock()
	if lim, ok := m.keyToLimiter[mapKey]; ok {
		m.mu.RUnlock()
		return lim
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if lim, ok := m.keyToLimiter[mapKey]; ok {
		return lim
	}

	limit := m.limitForType(keyType)
	limiter := rate.NewLimiter(limit, m.burstForType(keyType, limit))
	m.keyToLimiter[mapKey] = limiter
	return limiter
}

func keyTypeString(keyType KeyType) string {
	switch keyType {
	case ProKey:
		return "pro"
	case DemoKey:
		return "demo"
	default:
		return "none"
	}
}

func (m *RateLimiterManager) limitForType(keyType KeyType) rate.Limit {
	rpm := 0
	switch keyType {
	case ProKey:
		rpm = m.config.Pro.RateLimitPerMinute
		if rpm <= 0 {
			rpm = defaultProRPM
		}
	case DemoKey:
		rpm = m.config.Demo.RateLimitPerMinute
		if rpm <= 0 {
			rpm = defaultDemoRPM
		}
	default:
		rpm = m.config.NoKey.RateLimitPerMinute
		if rpm <= 0 {
			rpm = defaultNoKeyRPM
		}
	}
	return rate.Limit(float64(rpm) / 60.0)
}

func (m *RateLimiterManager) burstForType(keyType KeyType, limit rate.Limit) int {
	switch keyType {
	case ProKey:
		if m.config.Pro.Burst > 0 {
			return m.config.Pro.Burst
		}
	case DemoKey:
		if m.config.Demo.Burst > 0 {
			return m.config.Demo.Burst
		}
	default:
		if m.config.NoKey.Burst > 0 {
			return m.config.NoKey.Burst
		}
	}
	if limit <= 1.0 {
		return 1
	}
	return int(math.Ceil(float64(limit)))
}
