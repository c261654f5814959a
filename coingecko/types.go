package coingecko

// CoinListEntry is one entry of the /coins/list response
type CoinListEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// SimplePriceResponse maps coin id -> currency -> price
type SimplePriceResponse map[string]map[string]float64

// CoinDetail is the subset of the /coins/{id} response the dashboard uses
type CoinDetail struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Symbol        string            `json:"symbol"`
	Description   map[string]string `json:"description"`
	Links         CoinLinks         `json:"links"`
	DeveloperData CoinDeveloperData `json:"developer_data"`
	MarketCapRank int               `json:"market_cap_rank"`
	Platforms     map[string]string `json:"platforms"`
}

// CoinLinks holds the link section of a coin detail response
type CoinLinks struct {
	Homepage []string `json:"homepage"`
}

// CoinDeveloperData holds the developer section of a coin detail response
type CoinDeveloperData struct {
	OrganizationName string `json:"organization_name"`
}

// MarketChartData is the /coins/{id}/market_chart response.
// Prices holds [timestampMillis, price] pairs.
type MarketChartData struct {
	Prices [][2]float64 `json:"prices"`
}
