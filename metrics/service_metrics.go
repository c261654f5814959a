package metrics

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsPrefix is the prefix used for all metrics
const MetricsPrefix = "tokenboard_"

// Service constants
const (
	ServiceCatalog   = "catalog"
	ServiceTokenInfo = "tokeninfo"
	ServicePrices    = "prices"
	ServiceHistory   = "history"
)

var (
	// Global CoinGecko request counter (all services)
	// Cardinality: ~4 (success, error, rate_limited, timeout)
	CoingeckoRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "coingecko_requests_total",
			Help: "Total number of HTTP requests to CoinGecko API across all services",
		},
		[]string{"status"},
	)

	// Service-specific CoinGecko request counter
	// Cardinality: ~16 (4 services x 4 statuses)
	ServiceCoingeckoRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "service_coingecko_requests_total",
			Help: "Total number of HTTP requests to CoinGecko API per service",
		},
		[]string{"service", "status"},
	)

	// Poll cycle duration per service
	// Cardinality: ~4 (number of services)
	DataFetchCycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: MetricsPrefix + "data_fetch_cycle_duration_seconds",
			Help: "Time taken to complete a full data fetch cycle",
		},
		[]string{"service"},
	)

	// Service cache size
	// Cardinality: ~4 (number of services)
	ServiceCacheSizeGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricsPrefix + "service_cache_size",
			Help: "Number of items in service cache",
		},
		[]string{"service"},
	)

	// Retry attempts counter
	// Cardinality: ~4 (number of services)
	ServiceRetryCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "service_retry_attempts_total",
			Help: "Total number of retry attempts per service",
		},
		[]string{"service"},
	)
)

// MetricsWriter provides a unified interface for recording service metrics
type MetricsWriter struct {
	serviceName string
}

// NewMetricsWriter creates a new MetricsWriter for the specified service
func NewMetricsWriter(serviceName string) *MetricsWriter {
	return &MetricsWriter{
		serviceName: serviceName,
	}
}

// GetServiceName returns the service name
func (mw *MetricsWriter) GetServiceName() string {
	return mw.serviceName
}

// RecordServiceCoingeckoRequest records a service-specific CoinGecko API request
func (mw *MetricsWriter) RecordServiceCoingeckoRequest(status string) {
	CoingeckoRequestsTotal.WithLabelValues(status).Inc()
	ServiceCoingeckoRequestsTotal.WithLabelValues(mw.serviceName, status).Inc()
}

// RecordDataFetchCycle records the duration of a data fetch cycle
func (mw *MetricsWriter) RecordDataFetchCycle(duration time.Duration) {
	DataFetchCycleDuration.WithLabelValues(mw.serviceName).Observe(duration.Seconds())
	log.Printf("Metrics: %s data fetch cycle took %.2fs", mw.serviceName, duration.Seconds())
}

// RecordCacheSize records the number of items in service cache
func (mw *MetricsWriter) RecordCacheSize(size int) {
	ServiceCacheSizeGauge.WithLabelValues(mw.serviceName).Set(float64(size))
}

// RecordRetryAttempt records a retry attempt
func (mw *MetricsWriter) RecordRetryAttempt() {
	ServiceRetryCounter.WithLabelValues(mw.serviceName).Inc()
}

// Implement the HTTP status handler interface for MetricsWriter

// OnRequest records an HTTP request with its status
func (mw *MetricsWriter) OnRequest(status string) {
	mw.RecordServiceCoingeckoRequest(status)
}

// OnRetry records an HTTP retry attempt
func (mw *MetricsWriter) OnRetry() {
	mw.RecordRetryAttempt()
}
