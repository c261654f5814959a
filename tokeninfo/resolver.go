package tokeninfo

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"github.com/tokenboard/market-data/coingecko"
	"github.com/tokenboard/market-data/metrics"
)

// CoinDetailFetcher is the upstream dependency of the resolver
type CoinDetailFetcher interface {
	CoinByID(ctx context.Context, id string) (*coingecko.CoinDetail, error)
}

// Resolver resolves identifiers to descriptors. Well-known identifiers are
// served from the static tables; everything else is fetched from upstream
// once and cached for the process lifetime. A failed fetch is cached the same
// way, so an identifier is resolved at most once regardless of outcome.
type Resolver struct {
	fetcher       CoinDetailFetcher
	cache         *gocache.Cache
	metricsWriter *metrics.MetricsWriter
}

// NewResolver creates a resolver backed by the given fetcher
func NewResolver(fetcher CoinDetailFetcher) *Resolver {
	return &Resolver{
		fetcher:       fetcher,
		cache:         gocache.New(gocache.NoExpiration, 0),
		metricsWriter: metrics.NewMetricsWriter(metrics.ServiceTokenInfo),
	}
}

// Resolve returns the descriptor for an identifier. It never returns an
// error: upstream failures produce a cached placeholder descriptor.
func (r *Resolver) Resolve(ctx context.Context, id string) Descriptor {
	if d, ok := WellKnownDescriptor(id); ok {
		return d
	}

	coinID := UpstreamID(id)

	if cached, found := r.cache.Get(coinID); found {
		return cached.(Descriptor)
	}

	descriptor := r.fetchDescriptor(ctx, coinID)

	// Concurrent resolvers may both fetch; last writer wins, both results
	// describe the same coin.
	r.cache.Set(coinID, descriptor, gocache.NoExpiration)
	r.metricsWriter.RecordCacheSize(r.cache.ItemCount())

	return descriptor
}

func (r *Resolver) fetchDescriptor(ctx context.Context, coinID string) Descriptor {
	detail, err := r.fetcher.CoinByID(ctx, coinID)
	if err != nil {
		log.Printf("TokenInfo: Error fetching metadata for %s: %v", coinID, err)
		return placeholderDescriptor(coinID)
	}

	return descriptorFromDetail(detail)
}

// descriptorFromDetail maps an upstream coin detail onto a descriptor,
// falling back field by field when data is absent
func descriptorFromDetail(detail *coingecko.CoinDetail) Descriptor {
	name := detail.Name
	if name == "" {
		name = "Unknown"
	}

	description := detail.Description["ja"]
	if description == "" {
		description = detail.Description["en"]
	}
	if description == "" {
		description = noDescription
	}

	issuer := detail.DeveloperData.OrganizationName
	if issuer == "" {
		issuer = unknownField
	}

	website := ""
	if len(detail.Links.Homepage) > 0 {
		website = detail.Links.Homepage[0]
	}

	rank := unknownField
	if detail.MarketCapRank > 0 {
		rank = fmt.Sprintf("%d位", detail.MarketCapRank)
	}

	blockchain := unknownField
	if len(detail.Platforms) > 0 {
		chains := make([]string, 0, len(detail.Platforms))
		for chain := range detail.Platforms {
			if chain != "" {
				chains = append(chains, chain)
			}
		}
		if len(chains) > 0 {
			// Map iteration order varies per run; keep the output stable
			sort.Strings(chains)
			blockchain = strings.Join(chains, ", ")
		}
	}

	return Descriptor{
		Name:          name,
		Symbol:        strings.ToUpper(detail.Symbol),
		Description:   description,
		Issuer:        issuer,
		LaunchDate:    unknownField,
		Website:       website,
		MarketCapRank: rank,
		Blockchain:    blockchain,
	}
}

// placeholderDescriptor is the permanent degraded result for identifiers the
// upstream could not resolve
func placeholderDescriptor(coinID string) Descriptor {
	return Descriptor{
		Name:          fmt.Sprintf("Unknown (%s)", coinID),
		Symbol:        strings.ToUpper(coinID),
		Description:   fetchFailedMessage,
		Issuer:        unknownField,
		LaunchDate:    unknownField,
		Website:       "",
		MarketCapRank: unknownField,
		Blockchain:    unknownField,
	}
}
