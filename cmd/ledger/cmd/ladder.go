package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/stockledger/render"
	"github.com/rustyeddy/stockledger/risk"
)

var ladderCmd = &cobra.Command{
	Use:   "ladder",
	Short: "Project consecutive limit-up or limit-down days",
	Long: `Project the price and market value of a holding over consecutive days
that each close at the same percentage move. Use a negative change for
limit-down days.

Examples:
  ledger ladder --start 10 --quantity 1000 --change 10 --days 5
  ledger ladder --start 25.5 --quantity 300 --change -20 --days 3`,
	Args: cobra.NoArgs,
	RunE: runLadder,
}

var ladder risk.Ladder

func init() {
	rootCmd.AddCommand(ladderCmd)

	ladderCmd.Flags().Float64Var(&ladder.StartPrice, "start", 0, "starting price (required)")
	ladderCmd.Flags().Float64Var(&ladder.Quantity, "quantity", 0, "shares held (required)")
	ladderCmd.Flags().Float64Var(&ladder.DailyChangePct, "change", 10, "daily change in percent")
	ladderCmd.Flags().IntVar(&ladder.Days, "days", 5, "number of days")
	ladderCmd.MarkFlagRequired("start")
	ladderCmd.MarkFlagRequired("quantity")
}

func runLadder(cmd *cobra.Command, args []string) error {
	rungs, err := ladder.Rungs()
	if err != nil {
		return err
	}
	return show(cmd, render.LadderMarkdown(ladder, rungs))
}
