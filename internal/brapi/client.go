package brapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hfcipriano/stock-radar-br/pkg/config"
	"github.com/hfcipriano/stock-radar-br/pkg/httputil"
	"github.com/hfcipriano/stock-radar-br/pkg/logger"
)

// MaxTickersPerRequest is the upstream limit on tickers per quote request
const MaxTickersPerRequest = 20

// Client handles communication with the brapi.dev API.
// All brapi calls go through this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new brapi client. The token and rate limit from
// config are applied on the HTTP client.
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	if cfg.Brapi.Token != "" {
		httpClient.WithBearerToken(cfg.Brapi.Token)
	}
	httpClient.WithLocalRateLimit(cfg.Brapi.RateLimitRPS)

	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "brapi"),
		baseURL:    cfg.Brapi.BaseURL,
	}
}

// getJSON fetches url and decodes the JSON body into dest
func (c *Client) getJSON(ctx context.Context, url string, dest interface{}) error {
	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
