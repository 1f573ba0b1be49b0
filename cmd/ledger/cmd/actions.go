package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stockledger/journal"
	"github.com/rustyeddy/stockledger/render"
)

var actionsCmd = &cobra.Command{
	Use:   "actions <instrument-id>",
	Short: "List the actions of an instrument",
	Long: `List every action recorded for an instrument, oldest first.

Examples:
  ledger actions 1
  ledger actions 1 --org > alpha.org`,
	Args: cobra.ExactArgs(1),
	RunE: runActions,
}

var annotateCmd = &cobra.Command{
	Use:   "annotate <entry-id>",
	Short: "Attach a note and action time to an action",
	Long: `Attach a free-text note and the time the trade actually happened to a
recorded action. Nothing else about an action can be changed.

Examples:
  ledger annotate 7 --note "bought the dip after earnings"
  ledger annotate 7 --note "stop hit" --at "2024-03-15 14:55"`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotate,
}

var (
	actionsOrg   bool
	annotateNote string
	annotateAt   string
)

const actionTimeLayout = "2006-01-02 15:04"

func init() {
	rootCmd.AddCommand(actionsCmd, annotateCmd)

	actionsCmd.Flags().BoolVar(&actionsOrg, "org", false, "print as an Org-mode journal")
	annotateCmd.Flags().StringVar(&annotateNote, "note", "", "note text")
	annotateCmd.Flags().StringVar(&annotateAt, "at", "", `action time "YYYY-MM-DD HH:MM" or "YYYY-MM-DD" (local time)`)
}

func runActions(cmd *cobra.Command, args []string) error {
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

	if actionsOrg {
		_, err = fmt.Fprint(cmd.OutOrStdout(), journal.FormatEntriesOrg(in, entries))
		return err
	}
	return show(cmd, render.InstrumentMarkdown(in, entries))
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "entry")
	if err != nil {
		return err
	}
	at, err := parseActionTime(time.Local, annotateAt)
	if err != nil {
		return fmt.Errorf("--at: %w", err)
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.book.Annotate(context.Background(), id, at, annotateNote); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Annotated action %d\n", id)
	return nil
}

// parseActionTime accepts a minute or a day in loc. Empty means unset.
func parseActionTime(loc *time.Location, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(actionTimeLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("want %q or YYYY-MM-DD, got %q", actionTimeLayout, s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}
