package ledger

import (
	"context"
	"time"

	"github.com/rustyeddy/stockledger/fee"
	"github.com/rustyeddy/stockledger/market"
)

// Store persists instruments, their entries and the fee schedule.
//
// Implementations report missing rows with an error wrapping ErrNotFound
// and driver failures with an error wrapping ErrStorage.
type Store interface {
	CreateInstrument(ctx context.Context, in Instrument) (int64, error)
	GetInstrument(ctx context.Context, id int64) (Instrument, error)
	// ListInstruments orders by sort index, then newest first.
	ListInstruments(ctx context.Context) ([]Instrument, error)
	SetInstrumentStatus(ctx context.Context, id int64, s market.Status, at time.Time) error
	// SetSortOrder assigns sort indexes 1..n in the order given.
	SetSortOrder(ctx context.Context, ids []int64) error
	// DeleteInstrument removes the instrument and all of its entries.
	DeleteInstrument(ctx context.Context, id int64) error

	AppendEntry(ctx context.Context, e Entry) (int64, error)
	// LatestEntry returns the entry with the highest id for the instrument.
	LatestEntry(ctx context.Context, instrumentID int64) (Entry, error)
	// ListEntries returns the instrument's entries in ascending id order.
	ListEntries(ctx context.Context, instrumentID int64) ([]Entry, error)
	GetEntry(ctx context.Context, id int64) (Entry, error)
	DeleteEntry(ctx context.Context, id int64) error
	AnnotateEntry(ctx context.Context, id int64, actionTime time.Time, note string) error

	FeeSchedule(ctx context.Context) (fee.Schedule, error)
	UpdateFeeRates(ctx context.Context, r fee.Rates) error
	UpdateSegmentRates(ctx context.Context, seg market.Segment, r fee.Rates) error

	Close() error
}
