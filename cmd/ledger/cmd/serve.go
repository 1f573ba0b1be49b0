package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/stockledger/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger as a JSON API",
	Long: `Serve the ledger over HTTP under /api/v1 until interrupted.

Examples:
  ledger serve
  ledger serve --addr :9000 --db ~/stocks.db`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := api.NewServer(a.book, api.Options{
		Logger:            a.log,
		AllowedOrigins:    a.cfg.Server.AllowedOrigins,
		DefaultCommission: a.cfg.Fees.DefaultCommission,
		Policy:            a.policy,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.log.Info("serving ledger", zap.String("db", a.cfg.Store.DBPath), zap.String("addr", addr))
	return srv.Start(ctx, addr)
}
