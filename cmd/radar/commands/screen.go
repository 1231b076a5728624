package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hfcipriano/stock-radar-br/internal/brapi"
	"github.com/hfcipriano/stock-radar-br/internal/screener"
	"github.com/hfcipriano/stock-radar-br/internal/valuation"
	"github.com/hfcipriano/stock-radar-br/pkg/config"
	"github.com/hfcipriano/stock-radar-br/pkg/httputil"
	"github.com/hfcipriano/stock-radar-br/pkg/logger"
)

// screenCmd runs one screening pass and prints the ranked table
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run the screener once and print the ranking",
	Long: `Run one screening pass against brapi.dev and print the ranked
result as a table.

Examples:
  radar screen
  radar screen --limit 20
  radar screen --method pe_target --pe-target 10
  radar screen --method ev_ebitda_target --ev-ebitda-target 5
  radar screen --top`,
	RunE: runScreen,
}

var (
	screenLimit    int
	screenMethod   string
	screenPeTarget float64
	screenEvTarget float64
	screenTop      bool
)

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().IntVar(&screenLimit, "limit", 15, "number of stocks to return (1-100)")
	screenCmd.Flags().StringVar(&screenMethod, "method", "graham", "valuation method (graham|pe_target|ev_ebitda_target)")
	screenCmd.Flags().Float64Var(&screenPeTarget, "pe-target", 0, "target P/E for pe_target (default 12)")
	screenCmd.Flags().Float64Var(&screenEvTarget, "ev-ebitda-target", 0, "target multiple for ev_ebitda_target (default 6)")
	screenCmd.Flags().BoolVar(&screenTop, "top", false, "top-discounted variant: Graham only, positive margin only")
}

func runScreen(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
		cfg.LogFormat = "console"
	}

	log := logger.New(cfg)

	if screenLimit < 1 {
		screenLimit = 1
	}
	if screenLimit > cfg.Screener.MaxLimit {
		screenLimit = cfg.Screener.MaxLimit
	}

	httpClient := httputil.NewWithTimeout(cfg, log, cfg.Brapi.Timeout)
	brapiClient := brapi.NewClient(cfg, httpClient, log)

	scr := screener.New(brapiClient, screener.Config{
		UniverseLimit: cfg.Screener.UniverseLimit,
		BatchSize:     cfg.Screener.BatchSize,
		Workers:       cfg.Screener.Workers,
		TopFloor:      cfg.Screener.TopFloor,
	}, log)

	ctx := context.Background()

	var stocks []screener.StockView
	if screenTop {
		stocks, err = scr.TopDiscounted(ctx, screenLimit)
	} else {
		var method valuation.Method
		method, err = valuation.Parse(screenMethod, screenPeTarget, screenEvTarget)
		if err != nil {
			return err
		}
		stocks, err = scr.Run(ctx, screenLimit, method)
	}
	if err != nil {
		return fmt.Errorf("screening run: %w", err)
	}

	printTable(stocks)
	return nil
}

func printTable(stocks []screener.StockView) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTICKER\tNAME\tPRICE\tINTRINSIC\tMARGIN\tEPS\tBVPS\tP/E\tP/B")

	for i, s := range stocks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			s.Ticker,
			s.Name,
			fmtOpt(s.Price),
			fmtOpt(s.IntrinsicValue),
			fmtPct(s.MarginOfSafety),
			fmtOpt(s.EPS),
			fmtOpt(s.BVPS),
			fmtOpt(s.PERatio),
			fmtOpt(s.PBRatio),
		)
	}

	w.Flush()
}

func fmtOpt(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func fmtPct(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *v*100)
}
