package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stockledger/journal"
	"github.com/rustyeddy/stockledger/ledger"
)

var exportCmd = &cobra.Command{
	Use:   "export <csv|org> [instrument-id...]",
	Short: "Export action history to CSV or an Org-mode journal",
	Long: `Export the action history of the given instruments, or of every
instrument when none are named.

Examples:
  ledger export csv --out ledger.csv
  ledger export org 1 2 > journal.org`,
	Args:      cobra.MinimumNArgs(1),
	ValidArgs: []string{"csv", "org"},
	RunE:      runExport,
}

var exportOut string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	format := args[0]
	if format != "csv" && format != "org" {
		return fmt.Errorf("unknown export format %q (want csv or org)", format)
	}
	ids := make([]int64, 0, len(args)-1)
	for _, s := range args[1:] {
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

	ctx := context.Background()
	var instruments []ledger.Instrument
	if len(ids) == 0 {
		if instruments, err = a.book.ListInstruments(ctx); err != nil {
			return err
		}
	} else {
		for _, id := range ids {
			in, err := a.book.GetInstrument(ctx, id)
			if err != nil {
				return err
			}
			instruments = append(instruments, in)
		}
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}

	// Exporters close writers that are closers; the file is ours to close.
	w = struct{ io.Writer }{w}

	var x journal.Exporter
	if format == "csv" {
		if x, err = journal.NewCSV(w); err != nil {
			return err
		}
	} else {
		x = journal.NewOrg(w)
	}

	for _, in := range instruments {
		entries, err := a.book.ListEntries(ctx, in.ID)
		if err != nil {
			return err
		}
		if err := x.Export(in, entries); err != nil {
			return fmt.Errorf("export %s: %w", in.Name, err)
		}
	}
	if err := x.Close(); err != nil {
		return err
	}

	if exportOut != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d instruments to %s\n", len(instruments), exportOut)
	}
	return nil
}
