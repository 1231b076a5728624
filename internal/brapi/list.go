package brapi

import (
	"context"
	"fmt"
)

// Listing is one entry of the quote list: a candidate ticker for screening
type Listing struct {
	Ticker string `json:"stock"`
	Name   string `json:"name"`
}

// quoteListResponse is the /quote/list response shape
type quoteListResponse struct {
	Stocks []Listing `json:"stocks"`
}

// ListTopByMarketCap returns up to limit tickers ordered by market cap,
// largest first. Fewer than requested is not an error; an unreachable API is.
func (c *Client) ListTopByMarketCap(ctx context.Context, limit int) ([]Listing, error) {
	url := fmt.Sprintf("%s/quote/list?type=stock&sortBy=market_cap_basic&sortOrder=desc&limit=%d&page=1",
		c.baseURL, limit)

	var resp quoteListResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("list top by market cap: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"requested": limit,
		"returned":  len(resp.Stocks),
	}).Debug("Fetched quote list")

	return resp.Stocks, nil
}
