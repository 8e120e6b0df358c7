package main

import (
	"github.com/spf13/cobra"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/logging"
)

var (
	cfgFile    string
	verbose    bool
	format     string
	outputFile string
	noCache    bool
	sourceKind string
	dataDir    string
)

var rootCmd = &cobra.Command{
	Use:   "fofecon",
	Short: "Game economy analytics CLI",
	Long: `fofecon summarizes Fish of Fortune economy data: weighted last-position
percentiles and distributions for MissionBar, Dice and Puzzle events,
per-day energy balance quantiles, and campaign markers from the
monetization plan.

Data comes from local Parquet/CSV extracts (--source files) or the
warehouse (--source warehouse).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logging.ForVerbosity(verbose))
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	flags.StringVarP(&format, "format", "f", "", "Output format: text, json, markdown, toon (default from config)")
	flags.StringVarP(&outputFile, "output", "o", "", "Write output to file instead of stdout")
	flags.BoolVar(&noCache, "no-cache", false, "Bypass the extract cache")
	flags.BoolVar(&verbose, "verbose", false, "Enable debug logging on stderr")
	flags.StringVar(&sourceKind, "source", "", "Data source: files or warehouse (default from config)")
	flags.StringVar(&dataDir, "data-dir", "", "Directory holding Parquet/CSV extracts (default from config)")
}
