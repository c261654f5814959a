package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	// Base URL for public API
	CoingeckoPublicURL = "https://api.coingecko.com"
	// Base URL for Pro API
	CoingeckoProURL = "https://pro-api.coingecko.com"
)

// buildURL safely combines a base URL with a path
func buildURL(baseURL, path string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	trimmedPath := strings.TrimLeft(path, "/")

	return baseURL + "/" + trimmedPath
}

// RequestBuilder builds CoinGecko API requests with chained parameters
type RequestBuilder struct {
	baseURL   string
	apiPath   string
	params    map[string]string
	apiKey    string
	keyType   KeyType
	userAgent string
	headers   map[string]string
}

// NewRequestBuilder creates a request builder for a CoinGecko endpoint path
func NewRequestBuilder(baseURL, apiPath string) *RequestBuilder {
	rb := &RequestBuilder{
		baseURL:   baseURL,
		apiPath:   apiPath,
		params:    make(map[string]string),
		headers:   make(map[string]string),
		userAgent: "Mozilla/5.0 Tokenboard",
	}

	rb.headers["Accept"] = "application/json"

	return rb
}

// With adds a custom parameter to the URL query
func (rb *RequestBuilder) With(key, value string) *RequestBuilder {
	rb.params[key] = value
	return rb
}

// WithCurrency adds the vs_currency parameter
func (rb *RequestBuilder) WithCurrency(currency string) *RequestBuilder {
	if currency != "" {
		rb.params["vs_currency"] = currency
	}
	return rb
}

// WithIds adds the ids parameter as a comma-separated list
func (rb *RequestBuilder) WithIds(ids []string) *RequestBuilder {
	if len(ids) > 0 {
		rb.params["ids"] = strings.Join(ids, ",")
	}
	return rb
}

// WithApiKey sets the API key and its type
func (rb *RequestBuilder) WithApiKey(apiKey string, keyType KeyType) *RequestBuilder {
	if apiKey != "" {
		rb.apiKey = apiKey
		rb.keyType = keyType
	}
	return rb
}

// BuildURL builds the complete URL for the request
func (rb *RequestBuilder) BuildURL() string {
	fullPath := buildURL(rb.baseURL, rb.apiPath)

	query := url.Values{}

	for key, value := range rb.params {
		query.Add(key, value)
	}

	if rb.apiKey != "" {
		switch rb.keyType {
		case ProKey:
			query.Add("x_cg_pro_api_key", rb.apiKey)
		case DemoKey:
			query.Add("x_cg_demo_api_key", rb.apiKey)
		}
	}

	finalURL := fullPath
	queryString := query.Encode()
	if queryString != "" {
		finalURL = fmt.Sprintf("%s?%s", finalURL, queryString)
	}

	return finalURL
}

// Build creates an http.Request bound to the given context
func (rb *RequestBuilder) Build(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rb.BuildURL(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", rb.userAgent)

	for key, value := range rb.headers {
		req.Header.Set(key, value)
	}

	return req, nil
}
