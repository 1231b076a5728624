package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hfcipriano/stock-radar-br/internal/brapi"
	"github.com/hfcipriano/stock-radar-br/internal/fundamentals"
	"github.com/hfcipriano/stock-radar-br/internal/screener"
	"github.com/hfcipriano/stock-radar-br/pkg/config"
	"github.com/hfcipriano/stock-radar-br/pkg/logger"
)

type stubFetcher struct {
	listings []brapi.Listing
	payloads []fundamentals.Payload
	err      error
}

func (s *stubFetcher) ListTopByMarketCap(ctx context.Context, limit int) ([]brapi.Listing, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.listings, nil
}

func (s *stubFetcher) FetchQuotes(ctx context.Context, tickers []string) ([]fundamentals.Payload, error) {
	return s.payloads, nil
}

func newTestHandler(fetcher screener.Fetcher) *ScreenerHandler {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "json",
		Screener: config.ScreenerConfig{
			UniverseLimit: 300,
			BatchSize:     10,
			Workers:       2,
			DefaultLimit:  15,
			MaxLimit:      100,
			TopFloor:      40,
		},
	}

	log := logger.New(cfg)
	scr := screener.New(fetcher, screener.Config{
		UniverseLimit: cfg.Screener.UniverseLimit,
		BatchSize:     cfg.Screener.BatchSize,
		Workers:       cfg.Screener.Workers,
		TopFloor:      cfg.Screener.TopFloor,
	}, log)

	return NewScreenerHandler(scr, cfg, log)
}

func discountedFetcher() *stubFetcher {
	return &stubFetcher{
		listings: []brapi.Listing{{Ticker: "PETR4", Name: "Petrobras PN"}},
		payloads: []fundamentals.Payload{
			{
				"symbol":             "PETR4",
				"shortName":          "Petrobras PN",
				"regularMarketPrice": 15.0,
				"earningsPerShare":   2.0,
				"bookValue":          8.0,
			},
		},
	}
}

func TestRunEndpoint(t *testing.T) {
	h := newTestHandler(discountedFetcher())

	req := httptest.NewRequest(http.MethodGet, "/api/screener?limit=5", nil)
	w := httptest.NewRecorder()
	h.Run(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ScreenerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "graham", resp.Method)
	assert.Equal(t, 5, resp.Limit)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Stocks, 1)
	assert.Equal(t, "PETR4", resp.Stocks[0].Ticker)
	require.NotNil(t, resp.Stocks[0].MarginOfSafety)
	assert.InDelta(t, 0.2095, *resp.Stocks[0].MarginOfSafety, 1e-4)
}

func TestRunEndpointMethodSelection(t *testing.T) {
	h := newTestHandler(discountedFetcher())

	req := httptest.NewRequest(http.MethodGet, "/api/screener?method=pe_target&peTarget=10", nil)
	w := httptest.NewRecorder()
	h.Run(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ScreenerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "pe_target", resp.Method)
	require.Len(t, resp.Stocks, 1)
	// eps 2.0 * target 10 = 20
	require.NotNil(t, resp.Stocks[0].IntrinsicValue)
	assert.InDelta(t, 20.0, *resp.Stocks[0].IntrinsicValue, 1e-9)
}

func TestRunEndpointRejectsUnknownMethod(t *testing.T) {
	h := newTestHandler(discountedFetcher())

	req := httptest.NewRequest(http.MethodGet, "/api/screener?method=dcf", nil)
	w := httptest.NewRecorder()
	h.Run(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunEndpointUpstreamFailure(t *testing.T) {
	h := newTestHandler(&stubFetcher{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/api/screener", nil)
	w := httptest.NewRecorder()
	h.Run(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestTopDiscountedEndpoint(t *testing.T) {
	h := newTestHandler(discountedFetcher())

	req := httptest.NewRequest(http.MethodGet, "/api/screener/top", nil)
	w := httptest.NewRecorder()
	h.TopDiscounted(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ScreenerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "graham", resp.Method)
	assert.Equal(t, 15, resp.Limit, "default limit applies when none is given")
	assert.Equal(t, 1, resp.Count)
}

func TestParseLimitClamping(t *testing.T) {
	h := newTestHandler(discountedFetcher())

	tests := []struct {
		query string
		want  int
	}{
		{"", 15},           // default
		{"limit=1", 1},     //
		{"limit=50", 50},   //
		{"limit=0", 1},     // clamped up
		{"limit=-5", 1},    // clamped up
		{"limit=500", 100}, // clamped down
		{"limit=abc", 15},  // unparseable falls back to default
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/screener?"+tt.query, nil)
		assert.Equal(t, tt.want, h.parseLimit(req), "query %q", tt.query)
	}
}
