package coingecko

import (
	"fmt"
	"log"

	"github.com/tokenboard/market-data/config"
)

// GetApiBaseUrl returns the API base URL for the given key type, honoring
// config overrides (used by tests and proxies)
func GetApiBaseUrl(cfg *config.Config, keyType KeyType) string {
	if keyType == ProKey {
		if cfg.OverrideCoingeckoProURL != "" {
			return cfg.OverrideCoingeckoProURL
		}
		return CoingeckoProURL
	}
	if cfg.OverrideCoingeckoPublicURL != "" {
		return cfg.OverrideCoingeckoPublicURL
	}
	return CoingeckoPublicURL
}

// KeyExecutor attempts an operation with the given API key. It returns the
// result, whether the attempt succeeded, and the error if it did not.
type KeyExecutor func(apiKey APIKey) (interface{}, bool, error)

// TryWithKeys runs the executor against each key in order until one succeeds.
// onFailed is invoked for every key whose attempt failed.
func TryWithKeys(keys []APIKey, logPrefix string, executor KeyExecutor, onFailed func(APIKey)) (interface{}, error) {
	var lastErr error

	for _, key := range keys {
		result, ok, err := executor(key)
		if ok {
			return result, nil
		}

		lastErr = err
		log.Printf("%s: Request with key type %v failed: %v", logPrefix, key.Type, err)

		if onFailed != nil {
			onFailed(key)
		}
	}

	return nil, fmt.Errorf("%s: all API keys exhausted, last error: %w", logPrefix, lastErr)
}

// CreateFailCallback returns an onFailed callback that puts failed keys into
// backoff via the key manager
func CreateFailCallback(keyManager *APIKeyManager) func(APIKey) {
	return func(key APIKey) {
		keyManager.MarkKeyAsFailed(key.Key)
	}
}
