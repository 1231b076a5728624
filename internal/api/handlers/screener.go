package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/hfcipriano/stock-radar-br/internal/screener"
	"github.com/hfcipriano/stock-radar-br/internal/valuation"
	"github.com/hfcipriano/stock-radar-br/pkg/config"
	"github.com/hfcipriano/stock-radar-br/pkg/logger"
)

// ScreenerHandler handles screener API endpoints
type ScreenerHandler struct {
	screener *screener.Screener
	config   *config.Config
	logger   *logger.Logger
}

// NewScreenerHandler creates a new screener handler
func NewScreenerHandler(s *screener.Screener, cfg *config.Config, log *logger.Logger) *ScreenerHandler {
	return &ScreenerHandler{
		screener: s,
		config:   cfg,
		logger:   log,
	}
}

// ScreenerResponse is the ranked screener payload
type ScreenerResponse struct {
	Method    string               `json:"method"`
	Limit     int                  `json:"limit"`
	Count     int                  `json:"count"`
	Stocks    []screener.StockView `json:"stocks"`
	FetchedAt string               `json:"fetchedAt"`
}

// Run returns the ranked screener for the configured universe.
// GET /api/screener?limit=15&method=graham|pe_target|ev_ebitda_target&peTarget=12&evEbitdaTarget=6
func (h *ScreenerHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := h.parseLimit(r)

	method, err := valuation.Parse(
		r.URL.Query().Get("method"),
		parseFloat(r.URL.Query().Get("peTarget")),
		parseFloat(r.URL.Query().Get("evEbitdaTarget")),
	)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	stocks, err := h.screener.Run(ctx, limit, method)
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"limit":  limit,
			"method": method.String(),
		}).Error("Screening run failed")
		respondError(w, http.StatusBadGateway, "Quote provider unavailable")
		return
	}

	respondJSON(w, http.StatusOK, ScreenerResponse{
		Method:    method.String(),
		Limit:     limit,
		Count:     len(stocks),
		Stocks:    stocks,
		FetchedAt: time.Now().Format(time.RFC3339),
	})
}

// TopDiscounted returns only stocks trading below their Graham number.
// GET /api/screener/top?limit=15
func (h *ScreenerHandler) TopDiscounted(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := h.parseLimit(r)

	stocks, err := h.screener.TopDiscounted(ctx, limit)
	if err != nil {
		h.logger.WithError(err).WithField("limit", limit).Error("Top discounted run failed")
		respondError(w, http.StatusBadGateway, "Quote provider unavailable")
		return
	}

	respondJSON(w, http.StatusOK, ScreenerResponse{
		Method:    valuation.Graham().String(),
		Limit:     limit,
		Count:     len(stocks),
		Stocks:    stocks,
		FetchedAt: time.Now().Format(time.RFC3339),
	})
}

// parseLimit reads the limit query param, defaulting and clamping at this
// boundary so the screener itself never sees a bad value
func (h *ScreenerHandler) parseLimit(r *http.Request) int {
	limit := h.config.Screener.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	if limit < 1 {
		limit = 1
	}
	if limit > h.config.Screener.MaxLimit {
		limit = h.config.Screener.MaxLimit
	}
	return limit
}

func parseFloat(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
