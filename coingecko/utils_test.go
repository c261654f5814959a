package coingecko

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenboard/market-data/config"
)

func TestGetApiBaseUrl(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, CoingeckoPublicURL, GetApiBaseUrl(cfg, NoKey))
	assert.Equal(t, CoingeckoPublicURL, GetApiBaseUrl(cfg, DemoKey))
	assert.Equal(t, CoingeckoProURL, GetApiBaseUrl(cfg, ProKey))

	cfg.OverrideCoingeckoPublicURL = "http://localhost:9090"
	cfg.OverrideCoingeckoProURL = "http://localhost:9091"
	assert.Equal(t, "http://localhost:9090", GetApiBaseUrl(cfg, NoKey))
	assert.Equal(t, "http://localhost:9090", GetApiBaseUrl(cfg, DemoKey))
	assert.Equal(t, "http://localhost:9091", GetApiBaseUrl(cfg, ProKey))
}

func TestTryWithKeys_FirstKeySucceeds(t *testing.T) {
	keys := []APIKey{
		{Key: "pro-1", Type: ProKey},
		{Key: "", Type: NoKey},
	}

	var attempts []KeyType
	executor := func(apiKey APIKey) (interface{}, bool, error) {
		attempts = append(attempts, apiKey.Type)
		return "result", true, nil
	}

	result, err := TryWithKeys(keys, "Test", executor, nil)
	require.NoError(t, err)
	assert.Equal(t, "result", result)
	assert.Equal(t, []KeyType{ProKey}, attempts)
}

func TestTryWithKeys_FallsThroughToNextKey(t *testing.T) {
	keys := []APIKey{
		{Key: "pro-1", Type: ProKey},
		{Key: "", Type: NoKey},
	}

	var failed []string
	executor := func(apiKey APIKey) (interface{}, bool, error) {
		if apiKey.Type == ProKey {
			return nil, false, errors.New("unauthorized")
		}
		return "fallback", true, nil
	}
	onFailed := func(key APIKey) { failed = append(failed, key.Key) }

	result, err := TryWithKeys(keys, "Test", executor, onFailed)
	require.NoError(t, err)
	assert.Equal(t, "fallback", result)
	assert.Equal(t, []string{"pro-1"}, failed)
}

func TestTryWithKeys_AllKeysFail(t *testing.T) {
	keys := []APIKey{
		{Key: "pro-1", Type: ProKey},
		{Key: "", Type: NoKey},
	}

	executor := func(apiKey APIKey) (interface{}, bool, error) {
		return nil, false, errors.New("boom")
	}

	_, err := TryWithKeys(keys, "Test", executor, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all API keys exhausted")
}

func TestCreateFailCallback(t *testing.T) {
	manager := NewAPIKeyManager(&config.APITokens{Tokens: []string{"pro-1", "pro-2"}})

	CreateFailCallback(manager)(APIKey{Key: "pro-1", Type: ProKey})

	keys := manager.GetAvailableKeys()
	require.Len(t, keys, 2)
	assert.Equal(t, "pro-2", keys[0].Key)
}
