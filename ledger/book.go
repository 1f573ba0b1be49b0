package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/stockledger/fee"
	"github.com/rustyeddy/stockledger/id"
	"github.com/rustyeddy/stockledger/market"
)

// Book runs the accounting engine against a Store. Every operation holds
// the book's lock from its first read to its last write.
type Book struct {
	mu     sync.Mutex
	store  Store
	policy fee.Policy
	log    *zap.Logger
	now    func() time.Time
	newRef func() string
}

type Option func(*Book)

func WithLogger(l *zap.Logger) Option {
	return func(b *Book) { b.log = l }
}

// WithPolicy replaces the minimum commission table.
func WithPolicy(p fee.Policy) Option {
	return func(b *Book) { b.policy = p }
}

func WithClock(now func() time.Time) Option {
	return func(b *Book) { b.now = now }
}

func NewBook(store Store, opts ...Option) *Book {
	b := &Book{
		store:  store,
		policy: fee.DefaultPolicy(),
		log:    zap.NewNop(),
		now:    time.Now,
		newRef: id.New,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// UndoResult reports what an undo removed.
type UndoResult struct {
	Removed           Entry `json:"removed"`
	InstrumentDeleted bool  `json:"instrument_deleted"`
}

// classify makes sure every error leaving the book wraps one of the
// package sentinels.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrInvalidInput), errors.Is(err, ErrStorage):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
	}
}

func (b *Book) ListInstruments(ctx context.Context) ([]Instrument, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out, err := b.store.ListInstruments(ctx)
	if err != nil {
		return nil, classify("list instruments", err)
	}
	return out, nil
}

// Summaries lists every instrument with its latest entry.
func (b *Book) Summaries(ctx context.Context) ([]Summary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ins, err := b.store.ListInstruments(ctx)
	if err != nil {
		return nil, classify("summaries", err)
	}

	out := make([]Summary, 0, len(ins))
	for _, in := range ins {
		s := Summary{Instrument: in}
		latest, err := b.store.LatestEntry(ctx, in.ID)
		switch {
		case err == nil:
			s.Latest = &latest
		case errors.Is(err, ErrNotFound):
		default:
			return nil, classify("summaries", err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Summary returns one instrument with its latest entry.
func (b *Book) Summary(ctx context.Context, instrumentID int64) (Summary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	in, err := b.store.GetInstrument(ctx, instrumentID)
	if err != nil {
		return Summary{}, classify("summary", err)
	}
	s := Summary{Instrument: in}
	latest, err := b.store.LatestEntry(ctx, instrumentID)
	switch {
	case err == nil:
		s.Latest = &latest
	case errors.Is(err, ErrNotFound):
	default:
		return Summary{}, classify("summary", err)
	}
	return s, nil
}

func (b *Book) GetInstrument(ctx context.Context, instrumentID int64) (Instrument, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	in, err := b.store.GetInstrument(ctx, instrumentID)
	if err != nil {
		return Instrument{}, classify("get instrument", err)
	}
	return in, nil
}

// ReorderInstruments gives the listed instruments sort indexes 1..n.
func (b *Book) ReorderInstruments(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("reorder: %w: no instrument ids given", ErrInvalidInput)
	}
	seen := make(map[int64]bool, len(ids))
	for _, v := range ids {
		if seen[v] {
			return fmt.Errorf("reorder: %w: instrument %d listed twice", ErrInvalidInput, v)
		}
		seen[v] = true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.SetSortOrder(ctx, ids); err != nil {
		return classify("reorder", err)
	}
	b.log.Info("instruments reordered", zap.Int64s("ids", ids))
	return nil
}

func (b *Book) DeleteInstrument(ctx context.Context, instrumentID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.store.GetInstrument(ctx, instrumentID); err != nil {
		return classify("delete instrument", err)
	}
	if err := b.store.DeleteInstrument(ctx, instrumentID); err != nil {
		return classify("delete instrument", err)
	}
	b.log.Info("instrument deleted", zap.Int64("instrument_id", instrumentID))
	return nil
}

// Open creates an instrument and its opening entry. If the entry cannot be
// written the instrument is removed again.
func (b *Book) Open(ctx context.Context, req OpenRequest) (int64, error) {
	if err := ValidateOpen(req); err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	sched, err := b.store.FeeSchedule(ctx)
	if err != nil {
		return 0, classify("open: fee schedule", err)
	}
	rates := fee.Resolve(sched, req.Segment, market.Open, req.CommissionRate)
	e, err := OpenEntry(req, rates, b.policy)
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}

	now := b.now()
	instrumentID, err := b.store.CreateInstrument(ctx, Instrument{
		Name:           req.Name,
		Segment:        req.Segment,
		CommissionRate: req.CommissionRate,
		Status:         market.StatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return 0, classify("open: create instrument", err)
	}

	e.InstrumentID = instrumentID
	e.Ref = b.newRef()
	e.CreatedAt = now
	entryID, err := b.store.AppendEntry(ctx, e)
	if err != nil {
		if derr := b.store.DeleteInstrument(ctx, instrumentID); derr != nil {
			b.log.Error("open rollback failed",
				zap.Int64("instrument_id", instrumentID), zap.Error(derr))
		}
		return 0, classify("open: append entry", err)
	}

	b.log.Info("position opened",
		zap.Int64("instrument_id", instrumentID),
		zap.Int64("entry_id", entryID),
		zap.String("name", req.Name),
		zap.Stringer("segment", req.Segment),
		zap.Float64("cost", e.Cost),
		zap.Float64("position", e.Position),
		zap.Float64("fee", e.Fees.Total()))
	return instrumentID, nil
}

// Add buys more shares into an open position.
func (b *Book) Add(ctx context.Context, instrumentID int64, req TradeRequest) (Entry, error) {
	return b.trade(ctx, "add", instrumentID, market.Add, func(latest Entry, r fee.Rates) (Entry, error) {
		return AddEntry(latest, req, r, b.policy)
	})
}

// Reduce sells part of an open position.
func (b *Book) Reduce(ctx context.Context, instrumentID int64, req TradeRequest) (Entry, error) {
	return b.trade(ctx, "reduce", instrumentID, market.Reduce, func(latest Entry, r fee.Rates) (Entry, error) {
		return ReduceEntry(latest, req, r, b.policy)
	})
}

// Close sells the whole position at currentPrice and marks the instrument
// closed.
func (b *Book) Close(ctx context.Context, instrumentID int64, currentPrice float64) (Entry, error) {
	return b.trade(ctx, "close", instrumentID, market.Close, func(latest Entry, r fee.Rates) (Entry, error) {
		return CloseEntry(latest, currentPrice, r, b.policy)
	})
}

type calcFunc func(latest Entry, r fee.Rates) (Entry, error)

func (b *Book) trade(ctx context.Context, op string, instrumentID int64, kind market.ActionKind, calc calcFunc) (Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	in, err := b.store.GetInstrument(ctx, instrumentID)
	if err != nil {
		return Entry{}, classify(op, err)
	}
	if in.Status != market.StatusOpen {
		return Entry{}, fmt.Errorf("%s: %w: instrument %d is %s", op, ErrInvalidState, instrumentID, in.Status)
	}
	latest, err := b.store.LatestEntry(ctx, instrumentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Entry{}, fmt.Errorf("%s: %w: instrument %d has no entries", op, ErrInvalidState, instrumentID)
		}
		return Entry{}, classify(op, err)
	}
	sched, err := b.store.FeeSchedule(ctx)
	if err != nil {
		return Entry{}, classify(op+": fee schedule", err)
	}

	e, err := calc(latest, fee.Resolve(sched, in.Segment, kind, in.CommissionRate))
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", op, err)
	}

	now := b.now()
	e.InstrumentID = instrumentID
	e.Ref = b.newRef()
	e.CreatedAt = now
	e.ID, err = b.store.AppendEntry(ctx, e)
	if err != nil {
		return Entry{}, classify(op, err)
	}

	if kind == market.Close {
		if err := b.store.SetInstrumentStatus(ctx, instrumentID, market.StatusClosed, now); err != nil {
			return Entry{}, classify(op+": set status", err)
		}
	}

	b.log.Info("position "+op,
		zap.Int64("instrument_id", instrumentID),
		zap.Int64("entry_id", e.ID),
		zap.Float64("trade_price", e.TradePrice),
		zap.Float64("trade_size", e.TradeSize),
		zap.Float64("cost", e.Cost),
		zap.Float64("position", e.Position),
		zap.Float64("profit", e.Profit))
	return e, nil
}

// Undo deletes the instrument's latest entry. The previous entry becomes
// current again. An instrument left without entries is deleted; otherwise
// it is marked open.
func (b *Book) Undo(ctx context.Context, instrumentID int64) (UndoResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	in, err := b.store.GetInstrument(ctx, instrumentID)
	if err != nil {
		return UndoResult{}, classify("undo", err)
	}
	latest, err := b.store.LatestEntry(ctx, instrumentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return UndoResult{}, fmt.Errorf("undo: %w: instrument %d has no entries", ErrInvalidState, instrumentID)
		}
		return UndoResult{}, classify("undo", err)
	}
	if err := b.store.DeleteEntry(ctx, latest.ID); err != nil {
		return UndoResult{}, classify("undo", err)
	}

	res := UndoResult{Removed: latest}
	_, err = b.store.LatestEntry(ctx, instrumentID)
	switch {
	case errors.Is(err, ErrNotFound):
		if err := b.store.DeleteInstrument(ctx, instrumentID); err != nil {
			return res, classify("undo: delete instrument", err)
		}
		res.InstrumentDeleted = true
	case err != nil:
		return res, classify("undo", err)
	case in.Status != market.StatusOpen:
		if err := b.store.SetInstrumentStatus(ctx, instrumentID, market.StatusOpen, b.now()); err != nil {
			return res, classify("undo: set status", err)
		}
	}

	b.log.Info("entry undone",
		zap.Int64("instrument_id", instrumentID),
		zap.Int64("entry_id", latest.ID),
		zap.Stringer("action", latest.Action),
		zap.Bool("instrument_deleted", res.InstrumentDeleted))
	return res, nil
}

// ListEntries returns the instrument's history, oldest first.
func (b *Book) ListEntries(ctx context.Context, instrumentID int64) ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.store.GetInstrument(ctx, instrumentID); err != nil {
		return nil, classify("list entries", err)
	}
	out, err := b.store.ListEntries(ctx, instrumentID)
	if err != nil {
		return nil, classify("list entries", err)
	}
	return out, nil
}

// Annotate sets the free-text note and user-supplied action time of an
// entry. It is the only change allowed to an existing entry.
func (b *Book) Annotate(ctx context.Context, entryID int64, actionTime time.Time, note string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.AnnotateEntry(ctx, entryID, actionTime, note); err != nil {
		return classify("annotate", err)
	}
	b.log.Info("entry annotated", zap.Int64("entry_id", entryID))
	return nil
}

func (b *Book) FeeSchedule(ctx context.Context) (fee.Schedule, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.store.FeeSchedule(ctx)
	if err != nil {
		return fee.Schedule{}, classify("fee schedule", err)
	}
	return s, nil
}

// UpdateFeeSchedule replaces the schedule's default rates.
func (b *Book) UpdateFeeSchedule(ctx context.Context, r fee.Rates) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("update fee schedule: %w: %w", ErrInvalidInput, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.UpdateFeeRates(ctx, r); err != nil {
		return classify("update fee schedule", err)
	}
	b.log.Info("fee schedule updated", zap.Any("rates", r))
	return nil
}

// UpdateSegmentRates sets the rates charged in one segment, overriding the
// schedule defaults there.
func (b *Book) UpdateSegmentRates(ctx context.Context, seg market.Segment, r fee.Rates) error {
	if !seg.Valid() {
		return fmt.Errorf("update segment rates: %w: unknown segment %d", ErrInvalidInput, int(seg))
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("update segment rates: %w: %w", ErrInvalidInput, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.UpdateSegmentRates(ctx, seg, r); err != nil {
		return classify("update segment rates", err)
	}
	b.log.Info("segment rates updated", zap.Stringer("segment", seg), zap.Any("rates", r))
	return nil
}
