package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "radar",
	Short: "Stock Radar BR - value screener for B3 equities",
	Long: `Stock Radar BR

Fetches quotes and fundamentals for B3-listed stocks from brapi.dev,
normalizes them and ranks stocks by margin of safety under a chosen
intrinsic-value method (Graham number, P/E target, EV/EBITDA target).

Examples:
  radar api
  radar screen --limit 15
  radar screen --method pe_target --pe-target 10 --limit 20`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
