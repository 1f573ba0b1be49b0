package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stockledger/render"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List instruments with their current state",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var showCmd = &cobra.Command{
	Use:   "show <instrument-id>",
	Short: "Show an instrument and its full action history",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <instrument-id>",
	Short: "Delete an instrument and all of its actions",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var reorderCmd = &cobra.Command{
	Use:   "reorder <instrument-id>...",
	Short: "Set the display order of instruments",
	Long: `Set the display order of instruments. The first id is listed first.
Instruments not named keep their current position.

Example:
  ledger reorder 3 1 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReorder,
}

func init() {
	rootCmd.AddCommand(listCmd, showCmd, deleteCmd, reorderCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	sums, err := a.book.Summaries(context.Background())
	if err != nil {
		return fmt.Errorf("list instruments: %w", err)
	}
	return show(cmd, render.SummariesMarkdown(sums))
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "instrument")
	if err != nil {
		return err
	}
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	in, err := a.book.GetInstrument(ctx, id)
	if err != nil {
		return err
	}
	entries, err := a.book.ListEntries(ctx, id)
	if err != nil {
		return err
	}
	return show(cmd, render.InstrumentMarkdown(in, entries))
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "instrument")
	if err != nil {
		return err
	}
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.book.DeleteInstrument(context.Background(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted instrument %d\n", id)
	return nil
}

func runReorder(cmd *cobra.Command, args []string) error {
	ids := make([]int64, 0, len(args))
	for _, s := range args {
		id, err := parseID(s, "instrument")
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.book.ReorderInstruments(context.Background(), ids); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Reordered %d instruments\n", len(ids))
	return nil
}
