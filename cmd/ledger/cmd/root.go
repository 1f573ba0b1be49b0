package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "A personal stock position ledger",
	Long: `Ledger tracks stock positions through their life: open, add, reduce and
close, with exchange fees, weighted average cost and profit computed on
every action.

It provides tools for:
  - Recording trades and undoing the latest one
  - Reviewing positions and their full action history
  - Annotating actions and exporting them to CSV or Org-mode journals
  - Managing the fee schedule per exchange segment
  - Projecting limit-up and limit-down ladders
  - Serving the ledger as a JSON API`,
	SilenceUsage: true,
}

var (
	cfgFile string
	envFile string
	dbPath  string
	plain   bool
	verbose bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", ".env file (default ./.env)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite ledger DB (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "print raw markdown instead of styled output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at the configured level instead of warnings only")
}
