package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the ledger CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ledger version %s\n", version)
		fmt.Fprintln(out, "A personal stock position ledger")
		fmt.Fprintln(out, "https://github.com/rustyeddy/stockledger")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
