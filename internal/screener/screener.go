package screener

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hfcipriano/stock-radar-br/internal/brapi"
	"github.com/hfcipriano/stock-radar-br/internal/fundamentals"
	"github.com/hfcipriano/stock-radar-br/internal/valuation"
	"github.com/hfcipriano/stock-radar-br/pkg/logger"
)

// Fetcher supplies the candidate universe and raw fundamentals payloads.
// *brapi.Client implements it; CachedFetcher wraps any implementation.
type Fetcher interface {
	ListTopByMarketCap(ctx context.Context, limit int) ([]brapi.Listing, error)
	FetchQuotes(ctx context.Context, tickers []string) ([]fundamentals.Payload, error)
}

// Config holds screening run parameters
type Config struct {
	UniverseLimit int // candidate tickers per full run
	BatchSize     int // tickers per quote request
	Workers       int // concurrent batch fetches
	TopFloor      int // minimum universe size for TopDiscounted
}

// DefaultConfig returns the parameters used when none are configured
func DefaultConfig() Config {
	return Config{
		UniverseLimit: 300,
		BatchSize:     10,
		Workers:       4,
		TopFloor:      40,
	}
}

// StockView is one row of the ranked screener output. Optional fields are
// omitted from JSON when absent; displayed numerics are rounded to 4
// decimal places.
type StockView struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`

	Price             *float64 `json:"price,omitempty"`
	EPS               *float64 `json:"eps,omitempty"`
	BVPS              *float64 `json:"bvps,omitempty"`
	PERatio           *float64 `json:"pe,omitempty"`
	PBRatio           *float64 `json:"pb,omitempty"`
	MarketCap         *float64 `json:"marketCap,omitempty"`
	SharesOutstanding *float64 `json:"sharesOutstanding,omitempty"`
	TotalDebt         *float64 `json:"totalDebt,omitempty"`
	Cash              *float64 `json:"cash,omitempty"`
	EBITDA            *float64 `json:"ebitda,omitempty"`
	Equity            *float64 `json:"equity,omitempty"`
	NetIncome         *float64 `json:"netIncome,omitempty"`
	Revenue           *float64 `json:"revenue,omitempty"`
	EnterpriseValue   *float64 `json:"ev,omitempty"`
	EVToEBITDA        *float64 `json:"evEbitda,omitempty"`
	NetMarginPct      *float64 `json:"netMargin,omitempty"`
	ROEPct            *float64 `json:"roe,omitempty"`

	// Valuation outputs
	IntrinsicValue *float64 `json:"intrinsic,omitempty"`
	MarginOfSafety *float64 `json:"marginOfSafety,omitempty"`
}

// Screener orchestrates universe selection, batched fetch, normalization,
// valuation and ranking into an ordered result list.
type Screener struct {
	fetcher Fetcher
	config  Config
	logger  *logger.Logger
}

// New creates a new Screener
func New(fetcher Fetcher, config Config, log *logger.Logger) *Screener {
	return &Screener{
		fetcher: fetcher,
		config:  config,
		logger:  log.WithField("module", "screener"),
	}
}

// Run screens the configured universe with the given valuation method and
// returns up to howMany stocks ranked by margin of safety, best first.
//
// A single malformed or incomplete payload never aborts the run; it just
// contributes fewer fields or drops out of the ranking. Only a failure to
// obtain the universe itself is fatal.
func (s *Screener) Run(ctx context.Context, howMany int, method valuation.Method) ([]StockView, error) {
	return s.run(ctx, s.config.UniverseLimit, howMany, method, false)
}

// TopDiscounted is the Graham-only variant: it sizes the universe to
// max(howMany*2, floor) to allow for filtering attrition and additionally
// drops stocks trading at or above their intrinsic value.
func (s *Screener) TopDiscounted(ctx context.Context, howMany int) ([]StockView, error) {
	universeLimit := howMany * 2
	if universeLimit < s.config.TopFloor {
		universeLimit = s.config.TopFloor
	}
	return s.run(ctx, universeLimit, howMany, valuation.Graham(), true)
}

func (s *Screener) run(ctx context.Context, universeLimit, howMany int, method valuation.Method, onlyDiscounted bool) ([]StockView, error) {
	universe, err := s.fetcher.ListTopByMarketCap(ctx, universeLimit)
	if err != nil {
		return nil, fmt.Errorf("list universe: %w", err)
	}

	tickers := make([]string, 0, len(universe))
	for _, listing := range universe {
		if listing.Ticker != "" {
			tickers = append(tickers, listing.Ticker)
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"universe": len(tickers),
		"method":   method.String(),
		"how_many": howMany,
	}).Info("Screening run started")

	payloads := s.fetchAll(ctx, tickers)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]StockView, 0, len(payloads))
	for _, payload := range payloads {
		rec := fundamentals.Normalize(payload)
		if !rec.HasPositivePrice() {
			continue
		}

		intrinsic := valuation.Intrinsic(rec, method)
		mos := valuation.MarginOfSafety(*rec.Price, intrinsic)
		if mos == nil {
			continue
		}
		if onlyDiscounted && *mos <= 0 {
			continue
		}

		out = append(out, newStockView(rec, intrinsic, mos))
	}

	// Stable: equal margins keep their pre-sort (batch concatenation) order
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].MarginOfSafety > *out[j].MarginOfSafety
	})

	if howMany > 0 && len(out) > howMany {
		out = out[:howMany]
	}

	s.logger.WithFields(map[string]interface{}{
		"ranked":   len(out),
		"universe": len(tickers),
	}).Info("Screening run completed")

	return out, nil
}

// fetchAll fans batches out to a bounded worker pool and concatenates the
// results in batch order, so identical inputs yield identical runs. A
// failed batch logs a warning and contributes zero payloads.
func (s *Screener) fetchAll(ctx context.Context, tickers []string) []fundamentals.Payload {
	batches := chunk(tickers, s.config.BatchSize)
	if len(batches) == 0 {
		return nil
	}

	workers := s.config.Workers
	if workers > len(batches) {
		workers = len(batches)
	}

	results := make([][]fundamentals.Payload, len(batches))
	jobCh := make(chan int, len(batches))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobCh {
				select {
				case <-ctx.Done():
					return
				default:
				}

				payloads, err := s.fetcher.FetchQuotes(ctx, batches[idx])
				if err != nil {
					s.logger.WithError(err).WithFields(map[string]interface{}{
						"batch":   idx,
						"tickers": len(batches[idx]),
					}).Warn("Batch fetch failed, skipping")
					continue
				}
				results[idx] = payloads
			}
		}()
	}

	for idx := range batches {
		jobCh <- idx
	}
	close(jobCh)
	wg.Wait()

	merged := make([]fundamentals.Payload, 0, len(tickers))
	for _, payloads := range results {
		merged = append(merged, payloads...)
	}
	return merged
}

// newStockView builds the display row with 4-decimal rounding throughout
func newStockView(rec fundamentals.Record, intrinsic, mos *float64) StockView {
	return StockView{
		Ticker: rec.Ticker,
		Name:   rec.Name,

		Price:             valuation.Round4Ptr(rec.Price),
		EPS:               valuation.Round4Ptr(rec.EPS),
		BVPS:              valuation.Round4Ptr(rec.BookValuePerShare),
		PERatio:           valuation.Round4Ptr(rec.PERatio),
		PBRatio:           valuation.Round4Ptr(rec.PBRatio),
		MarketCap:         valuation.Round4Ptr(rec.MarketCap),
		SharesOutstanding: valuation.Round4Ptr(rec.SharesOutstanding),
		TotalDebt:         valuation.Round4Ptr(rec.TotalDebt),
		Cash:              valuation.Round4Ptr(rec.Cash),
		EBITDA:            valuation.Round4Ptr(rec.EBITDA),
		Equity:            valuation.Round4Ptr(rec.Equity),
		NetIncome:         valuation.Round4Ptr(rec.NetIncome),
		Revenue:           valuation.Round4Ptr(rec.Revenue),
		EnterpriseValue:   valuation.Round4Ptr(rec.EnterpriseValue),
		EVToEBITDA:        valuation.Round4Ptr(rec.EVToEBITDA),
		NetMarginPct:      valuation.Round4Ptr(rec.NetMarginPct),
		ROEPct:            valuation.Round4Ptr(rec.ROEPct),

		IntrinsicValue: valuation.Round4Ptr(intrinsic),
		MarginOfSafety: valuation.Round4Ptr(mos),
	}
}

// chunk splits tickers into slices of at most size elements
func chunk(tickers []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}

	var batches [][]string
	for start := 0; start < len(tickers); start += size {
		end := start + size
		if end > len(tickers) {
			end = len(tickers)
		}
		batches = append(batches, tickers[start:end])
	}
	return batches
}
