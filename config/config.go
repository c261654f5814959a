package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when the config file omits a setting
const (
	DefaultPollInterval   = 60 * time.Second
	DefaultCatalogTTL     = 3600 * time.Second
	DefaultSeriesCapacity = 100
	DefaultCurrency       = "usd"
	DefaultPort           = "8080"
)

type Config struct {
	Port string `yaml:"port"`

	TokensFile string `yaml:"tokens_file"`
	APITokens  *APITokens

	OverrideCoingeckoPublicURL string `yaml:"override_coingecko_public_url"`
	OverrideCoingeckoProURL    string `yaml:"override_coingecko_pro_url"`

	APIKeys APIKeyConfig  `yaml:"api_keys"`
	Poller  PollerConfig  `yaml:"poller"`
	Catalog CatalogConfig `yaml:"catalog"`
	Prices  PricesConfig  `yaml:"prices"`
}

// PollerConfig configures the background price poller
type PollerConfig struct {
	UpdateInterval time.Duration `yaml:"update_interval"`
}

// CatalogConfig configures the coins list snapshot cache
type CatalogConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// PricesConfig configures the in-memory price series store
type PricesConfig struct {
	SeriesCapacity int    `yaml:"series_capacity"`
	Currency       string `yaml:"currency"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	apiTokens, err := LoadAPITokens(config.TokensFile)
	if err != nil {
		log.Printf("Warning: Error loading API tokens from %s: %v. Using public API without authentication.",
			config.TokensFile, err)
		config.APITokens = &APITokens{Tokens: []string{}}
	} else {
		config.APITokens = apiTokens
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = DefaultPort
	}
	if c.Poller.UpdateInterval <= 0 {
		c.Poller.UpdateInterval = DefaultPollInterval
	}
	if c.Catalog.TTL <= 0 {
		c.Catalog.TTL = DefaultCatalogTTL
	}
	if c.Prices.SeriesCapacity <= 0 {
		c.Prices.SeriesCapacity = DefaultSeriesCapacity
	}
	if c.Prices.Currency == "" {
		c.Prices.Currency = DefaultCurrency
	}
}
