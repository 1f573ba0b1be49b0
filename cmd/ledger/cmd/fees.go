package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stockledger/fee"
	"github.com/rustyeddy/stockledger/market"
	"github.com/rustyeddy/stockledger/render"
)

var feesCmd = &cobra.Command{
	Use:   "fees",
	Short: "Show or change the fee schedule",
	Long: `Show or change the exchange fee schedule used to price every action.

Subcommands:
  show     - Print the active schedule and minimum commissions
  set      - Change the default rates
  segment  - Change the rates of one exchange segment

Rates are fractions of the traded value: 0.001 is 0.1%.

Examples:
  ledger fees show
  ledger fees set --tax 0.0005
  ledger fees segment star --tax 0.002`,
}

var feesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active fee schedule",
	Args:  cobra.NoArgs,
	RunE:  runFeesShow,
}

var feesSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the default rates",
	Long:  `Change the default rates. Rates not given keep their current value.`,
	Args:  cobra.NoArgs,
	RunE:  runFeesSet,
}

var feesSegmentCmd = &cobra.Command{
	Use:   "segment <segment>",
	Short: "Change the rates of one exchange segment",
	Long: `Change the rates of one exchange segment. Rates not given keep the
segment's current effective value.`,
	Args: cobra.ExactArgs(1),
	RunE: runFeesSegment,
}

var feeRates fee.Rates

func init() {
	rootCmd.AddCommand(feesCmd)
	feesCmd.AddCommand(feesShowCmd, feesSetCmd, feesSegmentCmd)

	for _, c := range []*cobra.Command{feesSetCmd, feesSegmentCmd} {
		c.Flags().Float64Var(&feeRates.Commission, "commission", 0, "exchange commission rate (0 uses each instrument's own)")
		c.Flags().Float64Var(&feeRates.Tax, "tax", 0, "stamp tax rate, charged on sells")
		c.Flags().Float64Var(&feeRates.Regulatory, "regulatory", 0, "regulatory fee rate")
		c.Flags().Float64Var(&feeRates.Brokerage, "brokerage", 0, "brokerage handling rate")
		c.Flags().Float64Var(&feeRates.Transfer, "transfer", 0, "transfer fee rate")
	}
}

// mergeRates overlays the rate flags the user set onto cur.
func mergeRates(cmd *cobra.Command, cur fee.Rates) fee.Rates {
	set := map[string]*float64{
		"commission": &cur.Commission,
		"tax":        &cur.Tax,
		"regulatory": &cur.Regulatory,
		"brokerage":  &cur.Brokerage,
		"transfer":   &cur.Transfer,
	}
	from := map[string]float64{
		"commission": feeRates.Commission,
		"tax":        feeRates.Tax,
		"regulatory": feeRates.Regulatory,
		"brokerage":  feeRates.Brokerage,
		"transfer":   feeRates.Transfer,
	}
	for name, dst := range set {
		if cmd.Flags().Changed(name) {
			*dst = from[name]
		}
	}
	return cur
}

func runFeesShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()
	return showSchedule(cmd, a)
}

func showSchedule(cmd *cobra.Command, a *app) error {
	s, err := a.book.FeeSchedule(context.Background())
	if err != nil {
		return err
	}
	return show(cmd, render.FeeScheduleMarkdown(s, a.policy))
}

func runFeesSet(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	s, err := a.book.FeeSchedule(ctx)
	if err != nil {
		return err
	}
	if err := a.book.UpdateFeeSchedule(ctx, mergeRates(cmd, s.Defaults)); err != nil {
		return err
	}
	return showSchedule(cmd, a)
}

func runFeesSegment(cmd *cobra.Command, args []string) error {
	seg, err := market.ParseSegment(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	s, err := a.book.FeeSchedule(ctx)
	if err != nil {
		return err
	}
	if err := a.book.UpdateSegmentRates(ctx, seg, mergeRates(cmd, s.For(seg))); err != nil {
		return err
	}
	return showSchedule(cmd, a)
}
