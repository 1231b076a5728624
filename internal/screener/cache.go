package screener

import (
	"context"
	"sort"
	"strings"

	"github.com/hfcipriano/stock-radar-br/internal/brapi"
	"github.com/hfcipriano/stock-radar-br/internal/fundamentals"
	"github.com/hfcipriano/stock-radar-br/pkg/logger"
	"github.com/hfcipriano/stock-radar-br/pkg/redis"
)

// CachedFetcher decorates a Fetcher with a Redis-backed read-through cache.
// It is purely a performance layer: any cache failure falls through to the
// wrapped fetcher and the screening output is unaffected.
type CachedFetcher struct {
	fetcher Fetcher
	cache   *redis.Cache
	logger  *logger.Logger
}

// NewCachedFetcher wraps fetcher with the given cache
func NewCachedFetcher(fetcher Fetcher, cache *redis.Cache, log *logger.Logger) *CachedFetcher {
	return &CachedFetcher{
		fetcher: fetcher,
		cache:   cache,
		logger:  log.WithField("module", "fetch_cache"),
	}
}

// ListTopByMarketCap serves the universe list from cache when fresh
func (f *CachedFetcher) ListTopByMarketCap(ctx context.Context, limit int) ([]brapi.Listing, error) {
	key := redis.UniverseKey(limit)

	var cached []brapi.Listing
	if found, err := f.cache.Get(ctx, key, &cached); err == nil && found {
		return cached, nil
	}

	listings, err := f.fetcher.ListTopByMarketCap(ctx, limit)
	if err != nil {
		return nil, err
	}

	if err := f.cache.Set(ctx, key, listings, redis.TTLUniverse); err != nil {
		f.logger.WithError(err).Warn("Failed to cache universe list")
	}

	return listings, nil
}

// FetchQuotes serves a batch from cache when the same ticker set was
// requested recently. The key is order-independent.
func (f *CachedFetcher) FetchQuotes(ctx context.Context, tickers []string) ([]fundamentals.Payload, error) {
	key := redis.QuoteBatchKey(canonicalTickerSet(tickers))

	var cached []fundamentals.Payload
	if found, err := f.cache.Get(ctx, key, &cached); err == nil && found {
		return cached, nil
	}

	payloads, err := f.fetcher.FetchQuotes(ctx, tickers)
	if err != nil {
		return nil, err
	}

	if err := f.cache.Set(ctx, key, payloads, redis.TTLQuotes); err != nil {
		f.logger.WithError(err).Warn("Failed to cache quote batch")
	}

	return payloads, nil
}

// canonicalTickerSet joins a sorted copy of tickers into a stable key
func canonicalTickerSet(tickers []string) string {
	sorted := make([]string, len(tickers))
	copy(sorted, tickers)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
