package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/output"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/progress"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/service/report"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/models"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Per-day quantiles of player energy balance",
	Long: `Computes interpolated per-player quantiles of an energy metric for every
promo day, optionally restricted to payers or non-payers.

Examples:
  fofecon balance
  fofecon balance --metric total_energy_out --payer payer
  fofecon balance --metric energy_balance_bop --percentiles p50,p99 -f json`,
	RunE: runBalance,
}

func init() {
	balanceCmd.Flags().String("metric", string(models.MetricEnergyEOP), "Metric: energy_balance_bop, energy_balance_eop or total_energy_out")
	balanceCmd.Flags().String("payer", string(models.PayerAll), "Players: all, payer or nonpayer")
	balanceCmd.Flags().StringSlice("percentiles", nil, `Quantiles such as p90 or 0.9; "all" for the defaults`)
	addWindowFlags(balanceCmd)

	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) error {
	metricFlag, _ := cmd.Flags().GetString("metric")
	metric, err := models.ParseMetric(metricFlag)
	if err != nil {
		return err
	}
	payerFlag, _ := cmd.Flags().GetString("payer")
	payer, err := models.ParsePayerFilter(payerFlag)
	if err != nil {
		return err
	}
	thresholds, err := getThresholds(cmd)
	if err != nil {
		return err
	}
	window, err := getWindow(cmd)
	if err != nil {
		return err
	}

	svc, cfg, cleanup, err := openService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	spinner := progress.NewSpinner("Loading player balance...")
	series, err := svc.BalanceQuantiles(cmd.Context(), report.BalanceOptions{
		Metric:     metric,
		Payer:      payer,
		Thresholds: thresholds,
		Window:     window,
	})
	if err != nil {
		spinner.FinishError(err)
		return fmt.Errorf("balance report failed: %w", err)
	}
	spinner.FinishSuccess()

	formatter, err := newFormatter(cmd, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.QuantileTable(*series))
}
