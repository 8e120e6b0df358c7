package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/output"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/service/report"
)

var campaignsCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "Campaign starts from the monetization plan",
	Long: `Lists the days whose main story differs from the previous day's. With
--firsts, also lists the day each story first appears.

Examples:
  fofecon campaigns
  fofecon campaigns --firsts --start 2025-01-01 -f markdown`,
	RunE: runCampaigns,
}

func init() {
	campaignsCmd.Flags().Bool("firsts", false, "Also list story first appearances")
	addWindowFlags(campaignsCmd)

	rootCmd.AddCommand(campaignsCmd)
}

func runCampaigns(cmd *cobra.Command, args []string) error {
	window, err := getWindow(cmd)
	if err != nil {
		return err
	}
	firsts, _ := cmd.Flags().GetBool("firsts")

	svc, cfg, cleanup, err := openService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r, err := svc.Campaigns(cmd.Context(), report.CampaignOptions{Window: window, Debuts: firsts})
	if err != nil {
		return fmt.Errorf("campaign report failed: %w", err)
	}

	formatter, err := newFormatter(cmd, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.CampaignSections(*r))
}
