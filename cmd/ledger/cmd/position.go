package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stockledger/ledger"
	"github.com/rustyeddy/stockledger/market"
	"github.com/rustyeddy/stockledger/render"
)

var openCmd = &cobra.Command{
	Use:   "open <name>",
	Short: "Open a new position",
	Long: `Open a position in a stock. The opening trade is charged the segment's
fees and at least the minimum commission.

Examples:
  ledger open AlphaCorp --segment SH --price 10 --size 1000
  ledger open BetaTech --segment chinext --price 20 --size 500 --commission 0.00015`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

var addCmd = &cobra.Command{
	Use:   "add <instrument-id>",
	Short: "Buy more of an open position",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var reduceCmd = &cobra.Command{
	Use:   "reduce <instrument-id>",
	Short: "Sell part of an open position",
	Long: `Sell part of an open position. The size must be less than the current
position; use close to sell everything.`,
	Args: cobra.ExactArgs(1),
	RunE: runReduce,
}

var closeCmd = &cobra.Command{
	Use:   "close <instrument-id>",
	Short: "Sell the whole position at the given price",
	Args:  cobra.ExactArgs(1),
	RunE:  runClose,
}

var undoCmd = &cobra.Command{
	Use:   "undo <instrument-id>",
	Short: "Remove the latest action of an instrument",
	Long: `Remove the latest action of an instrument so the previous one becomes
current again. Undoing the opening action removes the instrument.`,
	Args: cobra.ExactArgs(1),
	RunE: runUndo,
}

var (
	openSegment    string
	openCommission float64

	tradePrice   float64
	tradeSize    float64
	currentPrice float64
)

func init() {
	rootCmd.AddCommand(openCmd, addCmd, reduceCmd, closeCmd, undoCmd)

	openCmd.Flags().StringVarP(&openSegment, "segment", "s", "", "exchange segment: shanghai|shenzhen|chinext|star or SH|SZ|CYB|KCB (required)")
	openCmd.Flags().Float64Var(&openCommission, "commission", 0, "negotiated commission rate (default from config)")
	openCmd.MarkFlagRequired("segment")

	for _, c := range []*cobra.Command{openCmd, addCmd, reduceCmd} {
		c.Flags().Float64VarP(&tradePrice, "price", "p", 0, "trade price (required)")
		c.Flags().Float64VarP(&tradeSize, "size", "n", 0, "number of shares (required)")
		c.Flags().Float64VarP(&currentPrice, "current", "c", 0, "current market price (default: trade price)")
		c.MarkFlagRequired("price")
		c.MarkFlagRequired("size")
	}
	closeCmd.Flags().Float64VarP(&currentPrice, "price", "p", 0, "price the position is sold at (required)")
	closeCmd.MarkFlagRequired("price")
}

// current returns the --current flag, falling back to the trade price.
func current(cmd *cobra.Command) float64 {
	if cmd.Flags().Changed("current") {
		return currentPrice
	}
	return tradePrice
}

func runOpen(cmd *cobra.Command, args []string) error {
	seg, err := market.ParseSegment(openSegment)
	if err != nil {
		return err
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	commission := a.cfg.Fees.DefaultCommission
	if cmd.Flags().Changed("commission") {
		commission = openCommission
	}

	ctx := context.Background()
	id, err := a.book.Open(ctx, ledger.OpenRequest{
		Name:           args[0],
		Segment:        seg,
		CurrentPrice:   current(cmd),
		TradePrice:     tradePrice,
		TradeSize:      tradeSize,
		CommissionRate: commission,
	})
	if err != nil {
		return err
	}

	sum, err := a.book.Summary(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Opened instrument %d\n", id)
	return show(cmd, render.EntryMarkdown(sum.Instrument, *sum.Latest))
}

type tradeFunc func(ctx context.Context, instrumentID int64, req ledger.TradeRequest) (ledger.Entry, error)

func runTrade(cmd *cobra.Command, id int64, a *app, trade tradeFunc) error {
	ctx := context.Background()
	e, err := trade(ctx, id, ledger.TradeRequest{
		CurrentPrice: current(cmd),
		TradePrice:   tradePrice,
		TradeSize:    tradeSize,
	})
	if err != nil {
		return err
	}
	return showEntry(cmd, a, e)
}

func showEntry(cmd *cobra.Command, a *app, e ledger.Entry) error {
	in, err := a.book.GetInstrument(context.Background(), e.InstrumentID)
	if err != nil {
		return err
	}
	return show(cmd, render.EntryMarkdown(in, e))
}

func runAdd(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "instrument")
	if err != nil {
		return err
	}
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()
	return runTrade(cmd, id, a, a.book.Add)
}

func runReduce(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "instrument")
	if err != nil {
		return err
	}
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()
	return runTrade(cmd, id, a, a.book.Reduce)
}

func runClose(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "instrument")
	if err != nil {
		return err
	}
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	e, err := a.book.Close(context.Background(), id, currentPrice)
	if err != nil {
		return err
	}
	return showEntry(cmd, a, e)
}

func runUndo(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "instrument")
	if err != nil {
		return err
	}
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.book.Undo(context.Background(), id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Removed %s action %d\n", res.Removed.Action, res.Removed.ID)
	if res.InstrumentDeleted {
		fmt.Fprintf(out, "  Instrument %d had no actions left and was removed\n", id)
	}
	return nil
}
