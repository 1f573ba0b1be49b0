// Package journal persists the ledger in SQLite and exports instrument
// histories as CSV or Org-mode text.
package journal

import "github.com/rustyeddy/stockledger/ledger"

// Exporter writes an instrument's history to some external format.
type Exporter interface {
	Export(in ledger.Instrument, entries []ledger.Entry) error
	Close() error
}
