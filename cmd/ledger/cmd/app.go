package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/stockledger/config"
	"github.com/rustyeddy/stockledger/fee"
	"github.com/rustyeddy/stockledger/internal/logging"
	"github.com/rustyeddy/stockledger/journal"
	"github.com/rustyeddy/stockledger/ledger"
)

// app holds what a command needs to talk to the ledger.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	store  *journal.SQLite
	book   *ledger.Book
	policy fee.Policy
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile, envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dbPath != "" {
		cfg.Store.DBPath = dbPath
	}
	return cfg, nil
}

// openApp loads configuration and opens the ledger. Callers must Close it.
func openApp(logAtConfigLevel bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if !logAtConfigLevel && !verbose {
		level = "warn"
	}
	log, err := logging.New(level, cfg.Log.File)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	policy, err := cfg.Fees.Policy()
	if err != nil {
		return nil, err
	}

	store, err := journal.NewSQLite(cfg.Store.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	book := ledger.NewBook(store,
		ledger.WithLogger(log),
		ledger.WithPolicy(policy),
	)
	return &app{cfg: cfg, log: log, store: store, book: book, policy: policy}, nil
}

func (a *app) Close() error {
	_ = a.log.Sync()
	return a.store.Close()
}

// show writes markdown to the command's output, styled unless --plain.
func show(cmd *cobra.Command, md string) error {
	out := md
	if !plain {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
		if err != nil {
			return fmt.Errorf("renderer: %w", err)
		}
		if out, err = r.Render(md); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}
