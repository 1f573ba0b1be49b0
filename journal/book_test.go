package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stockledger/fee"
	"github.com/rustyeddy/stockledger/ledger"
	"github.com/rustyeddy/stockledger/market"
)

func newTestBook(t *testing.T) (*ledger.Book, *SQLite) {
	t.Helper()
	j, _ := newTestSQLite(t)
	return ledger.NewBook(j, ledger.WithClock(func() time.Time { return testTime })), j
}

func openAlpha(t *testing.T, b *ledger.Book) int64 {
	t.Helper()
	id, err := b.Open(context.Background(), ledger.OpenRequest{
		Name:           "AlphaCorp",
		Segment:        market.Shanghai,
		CurrentPrice:   10,
		TradePrice:     10,
		TradeSize:      1000,
		CommissionRate: 0.0003,
	})
	require.NoError(t, err)
	return id
}

func TestBookOverSQLiteLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b, _ := newTestBook(t)
	id := openAlpha(t, b)

	add, err := b.Add(ctx, id, ledger.TradeRequest{CurrentPrice: 11, TradePrice: 10.5, TradeSize: 500})
	require.NoError(t, err)
	assert.InDelta(t, 10.1667, add.Cost, 1e-4)

	red, err := b.Reduce(ctx, id, ledger.TradeRequest{CurrentPrice: 11, TradePrice: 11, TradeSize: 500})
	require.NoError(t, err)
	assert.InDelta(t, 1000, red.Position, 0)
	assert.Greater(t, red.Fees.Tax, 0.0)

	closed, err := b.Close(ctx, id, 9.5)
	require.NoError(t, err)
	assert.Equal(t, market.Close, closed.Action)

	in, err := b.GetInstrument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, market.StatusClosed, in.Status)

	entries, err := b.ListEntries(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	kinds := []market.ActionKind{market.Open, market.Add, market.Reduce, market.Close}
	for i, e := range entries {
		assert.Equal(t, kinds[i], e.Action)
		assert.Equal(t, id, e.InstrumentID)
		assert.NotEmpty(t, e.Ref)
	}

	_, err = b.Add(ctx, id, ledger.TradeRequest{CurrentPrice: 10, TradePrice: 10, TradeSize: 100})
	assert.True(t, errors.Is(err, ledger.ErrInvalidState))
}

func TestBookOverSQLiteUndo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b, _ := newTestBook(t)
	id := openAlpha(t, b)

	_, err := b.Close(ctx, id, 12)
	require.NoError(t, err)

	res, err := b.Undo(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, market.Close, res.Removed.Action)
	assert.False(t, res.InstrumentDeleted)

	in, err := b.GetInstrument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, market.StatusOpen, in.Status)

	sums, err := b.Summaries(ctx)
	require.NoError(t, err)
	require.Len(t, sums, 1)
	require.NotNil(t, sums[0].Latest)
	assert.Equal(t, market.Open, sums[0].Latest.Action)
	assert.InDelta(t, 1000, sums[0].Latest.Position, 0)

	res, err = b.Undo(ctx, id)
	require.NoError(t, err)
	assert.True(t, res.InstrumentDeleted)

	_, err = b.GetInstrument(ctx, id)
	assert.True(t, errors.Is(err, ledger.ErrNotFound))
}

func TestBookOverSQLiteAnnotate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b, j := newTestBook(t)
	id := openAlpha(t, b)

	entries, err := b.ListEntries(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	at := time.Date(2025, 6, 2, 14, 55, 0, 0, time.UTC)
	require.NoError(t, b.Annotate(ctx, entries[0].ID, at, "bought the dip"))

	e, err := j.GetEntry(ctx, entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "bought the dip", e.Note)
	assert.True(t, e.ActionTime.Equal(at))
	assert.InDelta(t, entries[0].Cost, e.Cost, 0)

	err = b.Annotate(ctx, 9999, at, "nope")
	assert.True(t, errors.Is(err, ledger.ErrNotFound))
}

func TestBookOverSQLiteReorderAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b, _ := newTestBook(t)
	first := openAlpha(t, b)
	second := openAlpha(t, b)

	list, err := b.ListInstruments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{second, first}, ids(list))

	require.NoError(t, b.ReorderInstruments(ctx, []int64{first, second}))
	list, err = b.ListInstruments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{first, second}, ids(list))

	require.NoError(t, b.DeleteInstrument(ctx, first))
	_, err = b.ListEntries(ctx, first)
	assert.True(t, errors.Is(err, ledger.ErrNotFound))

	err = b.DeleteInstrument(ctx, first)
	assert.True(t, errors.Is(err, ledger.ErrNotFound))
}

func TestBookOverSQLiteSegmentFees(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b, _ := newTestBook(t)

	star := fee.DefaultRates()
	star.Tax = 0.002
	require.NoError(t, b.UpdateSegmentRates(ctx, market.STAR, star))

	id, err := b.Open(ctx, ledger.OpenRequest{
		Name:           "GammaChip",
		Segment:        market.STAR,
		CurrentPrice:   50,
		TradePrice:     50,
		TradeSize:      200,
		CommissionRate: 0.0003,
	})
	require.NoError(t, err)

	red, err := b.Reduce(ctx, id, ledger.TradeRequest{CurrentPrice: 50, TradePrice: 50, TradeSize: 100})
	require.NoError(t, err)
	assert.InDelta(t, 5000*0.002, red.Fees.Tax, 1e-9)

	err = b.UpdateFeeSchedule(ctx, fee.Rates{Commission: -1})
	assert.True(t, errors.Is(err, ledger.ErrInvalidInput))
}
