package screener

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hfcipriano/stock-radar-br/internal/brapi"
	"github.com/hfcipriano/stock-radar-br/internal/fundamentals"
	"github.com/hfcipriano/stock-radar-br/internal/valuation"
	"github.com/hfcipriano/stock-radar-br/pkg/config"
	"github.com/hfcipriano/stock-radar-br/pkg/logger"
)

// fakeFetcher serves canned listings and payloads, optionally failing
// whole batches that contain designated tickers.
type fakeFetcher struct {
	listings []brapi.Listing
	listErr  error
	payloads map[string]fundamentals.Payload
	failFor  map[string]bool

	mu         sync.Mutex
	lastLimit  int
	batchCalls [][]string
}

func (f *fakeFetcher) ListTopByMarketCap(ctx context.Context, limit int) ([]brapi.Listing, error) {
	f.mu.Lock()
	f.lastLimit = limit
	f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit < len(f.listings) {
		return f.listings[:limit], nil
	}
	return f.listings, nil
}

func (f *fakeFetcher) FetchQuotes(ctx context.Context, tickers []string) ([]fundamentals.Payload, error) {
	f.mu.Lock()
	f.batchCalls = append(f.batchCalls, tickers)
	f.mu.Unlock()

	out := make([]fundamentals.Payload, 0, len(tickers))
	for _, ticker := range tickers {
		if f.failFor[ticker] {
			return nil, fmt.Errorf("upstream error for %s", ticker)
		}
		if p, ok := f.payloads[ticker]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func grahamPayload(ticker string, price, eps, bvps float64) fundamentals.Payload {
	return fundamentals.Payload{
		"symbol":             ticker,
		"shortName":          "Company " + ticker,
		"regularMarketPrice": price,
		"earningsPerShare":   eps,
		"bookValue":          bvps,
	}
}

func newTestScreener(f Fetcher) *Screener {
	cfg := DefaultConfig()
	cfg.BatchSize = 2
	cfg.Workers = 2
	return New(f, cfg, testLogger())
}

func TestRunRanksByMarginOfSafety(t *testing.T) {
	fetcher := &fakeFetcher{
		listings: []brapi.Listing{
			{Ticker: "AAAA3", Name: "Company AAAA3"},
			{Ticker: "BBBB3", Name: "Company BBBB3"},
		},
		payloads: map[string]fundamentals.Payload{
			// intrinsic sqrt(22.5*2*8) ~= 18.9737, margin ~= 0.2095
			"AAAA3": grahamPayload("AAAA3", 15.0, 2.0, 8.0),
			// intrinsic sqrt(22.5*1*4.5) ~= 10.0623, margin ~= 0.1056
			"BBBB3": grahamPayload("BBBB3", 9.0, 1.0, 4.5),
		},
	}

	s := newTestScreener(fetcher)
	got, err := s.Run(context.Background(), 1, valuation.Graham())
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "AAAA3", got[0].Ticker)
	require.NotNil(t, got[0].IntrinsicValue)
	assert.InDelta(t, 18.9737, *got[0].IntrinsicValue, 1e-4)
	require.NotNil(t, got[0].MarginOfSafety)
	assert.InDelta(t, 0.2095, *got[0].MarginOfSafety, 1e-4)
}

func TestRunStableOrderOnTies(t *testing.T) {
	// CCCC3 and DDDD3 are identical, so they tie on margin; EEEE3 is better
	fetcher := &fakeFetcher{
		listings: []brapi.Listing{
			{Ticker: "CCCC3"}, {Ticker: "DDDD3"}, {Ticker: "EEEE3"},
		},
		payloads: map[string]fundamentals.Payload{
			"CCCC3": grahamPayload("CCCC3", 12.0, 1.5, 6.0),
			"DDDD3": grahamPayload("DDDD3", 12.0, 1.5, 6.0),
			"EEEE3": grahamPayload("EEEE3", 10.0, 2.0, 8.0),
		},
	}

	cfg := DefaultConfig()
	cfg.BatchSize = 3 // one batch keeps the concatenation order deterministic here
	cfg.Workers = 1
	s := New(fetcher, cfg, testLogger())

	got, err := s.Run(context.Background(), 10, valuation.Graham())
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "EEEE3", got[0].Ticker)
	assert.Equal(t, "CCCC3", got[1].Ticker, "ties keep input order")
	assert.Equal(t, "DDDD3", got[2].Ticker)
}

func TestRunDropsUnrankableRecords(t *testing.T) {
	fetcher := &fakeFetcher{
		listings: []brapi.Listing{
			{Ticker: "GOOD3"}, {Ticker: "NOEPS3"}, {Ticker: "NOPRICE3"}, {Ticker: "NEGEPS3"},
		},
		payloads: map[string]fundamentals.Payload{
			"GOOD3": grahamPayload("GOOD3", 15.0, 2.0, 8.0),
			"NOEPS3": {
				"symbol":             "NOEPS3",
				"regularMarketPrice": 10.0,
				"bookValue":          5.0,
			},
			"NOPRICE3": {
				"symbol":           "NOPRICE3",
				"earningsPerShare": 2.0,
				"bookValue":        8.0,
			},
			"NEGEPS3": grahamPayload("NEGEPS3", 10.0, -2.0, 8.0),
		},
	}

	s := newTestScreener(fetcher)
	got, err := s.Run(context.Background(), 10, valuation.Graham())
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "GOOD3", got[0].Ticker)
}

func TestRunKeepsNegativeMargins(t *testing.T) {
	// Overpriced: intrinsic ~= 18.97 but trading at 25
	fetcher := &fakeFetcher{
		listings: []brapi.Listing{{Ticker: "OVER3"}},
		payloads: map[string]fundamentals.Payload{
			"OVER3": grahamPayload("OVER3", 25.0, 2.0, 8.0),
		},
	}

	s := newTestScreener(fetcher)

	got, err := s.Run(context.Background(), 10, valuation.Graham())
	require.NoError(t, err)
	require.Len(t, got, 1, "Run keeps overpriced stocks with a valid intrinsic value")
	assert.Negative(t, *got[0].MarginOfSafety)

	top, err := s.TopDiscounted(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, top, "TopDiscounted drops nonpositive margins")
}

func TestRunSurvivesPartialBatchFailure(t *testing.T) {
	fetcher := &fakeFetcher{
		listings: []brapi.Listing{
			{Ticker: "AAAA3"}, {Ticker: "BBBB3"}, {Ticker: "BAD3"}, {Ticker: "WORSE3"},
		},
		payloads: map[string]fundamentals.Payload{
			"AAAA3": grahamPayload("AAAA3", 15.0, 2.0, 8.0),
			"BBBB3": grahamPayload("BBBB3", 9.0, 1.0, 4.5),
		},
		failFor: map[string]bool{"BAD3": true},
	}

	s := newTestScreener(fetcher) // batch size 2: {AAAA3,BBBB3}, {BAD3,WORSE3}
	got, err := s.Run(context.Background(), 10, valuation.Graham())
	require.NoError(t, err, "a failed batch must not abort the run")

	require.Len(t, got, 2)
	assert.Equal(t, "AAAA3", got[0].Ticker)
	assert.Equal(t, "BBBB3", got[1].Ticker)
}

func TestRunFailsWhenUniverseUnavailable(t *testing.T) {
	fetcher := &fakeFetcher{
		listErr: errors.New("connection refused"),
	}

	s := newTestScreener(fetcher)
	_, err := s.Run(context.Background(), 10, valuation.Graham())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list universe")
}

func TestTopDiscountedUniverseSizing(t *testing.T) {
	fetcher := &fakeFetcher{}

	s := newTestScreener(fetcher)

	// Below the floor: max(15*2, 40) = 40
	_, err := s.TopDiscounted(context.Background(), 15)
	require.NoError(t, err)
	assert.Equal(t, 40, fetcher.lastLimit)

	// Above the floor: 30*2 = 60
	_, err = s.TopDiscounted(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 60, fetcher.lastLimit)
}

func TestRunRespectsCancellation(t *testing.T) {
	fetcher := &fakeFetcher{
		listings: []brapi.Listing{{Ticker: "AAAA3"}},
		payloads: map[string]fundamentals.Payload{
			"AAAA3": grahamPayload("AAAA3", 15.0, 2.0, 8.0),
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestScreener(fetcher)
	_, err := s.Run(ctx, 10, valuation.Graham())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name    string
		tickers []string
		size    int
		want    [][]string
	}{
		{"even split", []string{"a", "b", "c", "d"}, 2, [][]string{{"a", "b"}, {"c", "d"}}},
		{"remainder", []string{"a", "b", "c"}, 2, [][]string{{"a", "b"}, {"c"}}},
		{"single batch", []string{"a", "b"}, 10, [][]string{{"a", "b"}}},
		{"empty", nil, 2, nil},
		{"size guard", []string{"a", "b"}, 0, [][]string{{"a"}, {"b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chunk(tt.tickers, tt.size))
		})
	}
}
