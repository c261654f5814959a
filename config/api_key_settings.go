package config

import (
	"encoding/json"
	"os"
)

// APITokens holds CoinGecko API keys loaded from a separate tokens file
type APITokens struct {
	Tokens     []string `json:"api_tokens"`
	DemoTokens []string `json:"demo_api_tokens,omitempty"`
}

// LoadAPITokens reads API tokens from a JSON file. A missing file is not an
// error: the service falls back to the public API without authentication.
func LoadAPITokens(filename string) (*APITokens, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return &APITokens{Tokens: []string{}}, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var tokens APITokens
	err = json.Unmarshal(data, &tokens)
	return &tokens, err
}

// APIKeyConfig configures rate limiting per CoinGecko key type
type APIKeyConfig struct {
	// Requests per minute and burst per type. If zero, defaults are used.
	Pro   RateLimit `yaml:"pro"`
	Demo  RateLimit `yaml:"demo"`
	NoKey RateLimit `yaml:"nokey"`
}

// RateLimit represents a simple rpm + burst pair
type RateLimit struct {
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
	Burst              int `yaml:"burst"`
}
