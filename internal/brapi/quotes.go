package brapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/hfcipriano/stock-radar-br/internal/fundamentals"
)

// fundamentalsModules are the quote modules needed for valuation.
// summaryDetail is not available on all plans, so it is not requested.
const fundamentalsModules = "financialData,defaultKeyStatistics,incomeStatementHistory," +
	"balanceSheetHistory,financialDataHistory,cashflowHistory"

// quoteResponse is the /quote/{tickers} response shape. Result entries are
// kept raw: field locations vary per ticker and the normalizer owns the
// fallback logic.
type quoteResponse struct {
	Results []fundamentals.Payload `json:"results"`
}

// FetchQuotes returns raw quote payloads for at most MaxTickersPerRequest
// tickers in a single request. The response order is not guaranteed to
// match the input, and a payload may be missing for a requested ticker
// without this being an error.
func (c *Client) FetchQuotes(ctx context.Context, tickers []string) ([]fundamentals.Payload, error) {
	if len(tickers) == 0 {
		return nil, nil
	}
	if len(tickers) > MaxTickersPerRequest {
		return nil, fmt.Errorf("too many tickers in one request: %d > %d", len(tickers), MaxTickersPerRequest)
	}

	url := fmt.Sprintf("%s/quote/%s?fundamental=true&dividends=false&modules=%s",
		c.baseURL, strings.Join(tickers, ","), fundamentalsModules)

	var resp quoteResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("fetch quotes: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"requested": len(tickers),
		"returned":  len(resp.Results),
	}).Debug("Fetched quote batch")

	return resp.Results, nil
}
