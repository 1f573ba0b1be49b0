package main

import (
	"os"

	"github.com/rustyeddy/stockledger/cmd/ledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
