package ledger

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/rustyeddy/stockledger/fee"
	"github.com/rustyeddy/stockledger/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRates(commission float64) fee.Rates {
	return fee.Resolve(fee.DefaultSchedule(), market.Shanghai, market.Open, commission)
}

func alphaCorp(t *testing.T) Entry {
	t.Helper()
	e, err := OpenEntry(OpenRequest{
		Name:           "AlphaCorp",
		Segment:        market.Shanghai,
		CurrentPrice:   10.00,
		TradePrice:     10.00,
		TradeSize:      1000,
		CommissionRate: 0.0003,
	}, openRates(0.0003), fee.DefaultPolicy())
	require.NoError(t, err)
	return e
}

func TestOpenEntryExample(t *testing.T) {
	t.Parallel()

	e := alphaCorp(t)

	assert.Equal(t, market.Open, e.Action)
	assert.InDelta(t, 10.00, e.Cost, 1e-9)
	assert.InDelta(t, 1000, e.Position, 1e-9)
	// 10000 × 0.0003 = 3.0, raised to the 5.0 floor.
	assert.InDelta(t, 5.0, e.Fees.Commission, 1e-9)
	assert.InDelta(t, 0, e.Fees.Tax, 1e-12)
	assert.InDelta(t, 0.2, e.Fees.Regulatory, 1e-9)
	assert.InDelta(t, 0.487, e.Fees.Brokerage, 1e-9)
	assert.InDelta(t, 0.1, e.Fees.Transfer, 1e-9)
	assert.InDelta(t, e.Fees.Total(), e.TotalFee, 1e-12)
	assert.InDelta(t, 0, e.Profit, 1e-9)
	assert.InDelta(t, 0, e.ProfitRate, 1e-12)
}

func TestAddEntryExample(t *testing.T) {
	t.Parallel()

	open := alphaCorp(t)
	rates := fee.Resolve(fee.DefaultSchedule(), market.Shanghai, market.Add, 0.0003)

	e, err := AddEntry(open, TradeRequest{CurrentPrice: 11.00, TradePrice: 10.50, TradeSize: 500}, rates, fee.DefaultPolicy())
	require.NoError(t, err)

	wantCost := (10.00*1000 + 10.50*500) / 1500
	assert.InDelta(t, wantCost, e.Cost, 1e-9)
	assert.InDelta(t, 10.1667, e.Cost, 1e-4)
	assert.InDelta(t, 1500, e.Position, 1e-9)
	assert.InDelta(t, 1250.0, e.Profit, 0.01)
	assert.InDelta(t, 1250.0/(wantCost*1500), e.ProfitRate, 1e-9)

	// No floor on additions and no stamp tax on buys.
	assert.InDelta(t, 5250*0.0003, e.Fees.Commission, 1e-9)
	assert.InDelta(t, 0, e.Fees.Tax, 1e-12)
	assert.InDelta(t, open.TotalFee+e.Fees.Total(), e.TotalFee, 1e-9)
}

func TestReduceEntryRejectsWholePosition(t *testing.T) {
	t.Parallel()

	open := alphaCorp(t)
	add, err := AddEntry(open, TradeRequest{CurrentPrice: 11, TradePrice: 10.5, TradeSize: 500},
		openRates(0.0003), fee.DefaultPolicy())
	require.NoError(t, err)

	rates := fee.Resolve(fee.DefaultSchedule(), market.Shanghai, market.Reduce, 0.0003)
	for _, size := range []float64{1500, 1600} {
		_, err = ReduceEntry(add, TradeRequest{CurrentPrice: 11, TradePrice: 11, TradeSize: size}, rates, fee.DefaultPolicy())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidInput))
		assert.Contains(t, err.Error(), "close")
	}
}

func TestReduceEntry(t *testing.T) {
	t.Parallel()

	open := alphaCorp(t)
	rates := fee.Resolve(fee.DefaultSchedule(), market.Shanghai, market.Reduce, 0.0003)

	e, err := ReduceEntry(open, TradeRequest{CurrentPrice: 12, TradePrice: 12, TradeSize: 400}, rates, fee.DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, market.Reduce, e.Action)
	assert.InDelta(t, 600, e.Position, 1e-9)
	assert.InDelta(t, (10.0*1000-12.0*400)/600, e.Cost, 1e-9)
	assert.InDelta(t, (12-e.Cost)*600, e.Profit, 1e-9)
	// Sell side pays stamp tax on the trade value.
	assert.InDelta(t, 4800*0.001, e.Fees.Tax, 1e-9)
	assert.InDelta(t, 4800*0.0003, e.Fees.Commission, 1e-9)
}

func TestCloseEntryExample(t *testing.T) {
	t.Parallel()

	latest := Entry{InstrumentID: 7, Cost: 10.1667, Position: 1500, TotalFee: 12, Action: market.Add}
	rates := fee.Resolve(fee.DefaultSchedule(), market.Shanghai, market.Close, 0.0003)

	e, err := CloseEntry(latest, 9.50, rates, fee.DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, market.Close, e.Action)
	assert.InDelta(t, -1000.0, e.Profit, 0.5)
	assert.InDelta(t, 0, e.Position, 0)
	assert.InDelta(t, 0, e.Cost, 0)
	assert.InDelta(t, 1500, e.TradeSize, 1e-9)
	assert.InDelta(t, 9.50, e.TradePrice, 1e-9)
	assert.InDelta(t, e.Profit/(10.1667*1500), e.ProfitRate, 1e-9)
	assert.InDelta(t, 9.5*1500*0.001, e.Fees.Tax, 1e-9)
	assert.InDelta(t, 12+e.Fees.Total(), e.TotalFee, 1e-9)
	assert.Equal(t, int64(7), e.InstrumentID)
}

func TestTradesOnClosedPositionRejected(t *testing.T) {
	t.Parallel()

	closed := Entry{Action: market.Close}
	r := fee.DefaultRates()
	p := fee.DefaultPolicy()
	req := TradeRequest{CurrentPrice: 1, TradePrice: 1, TradeSize: 1}

	_, err := AddEntry(closed, req, r, p)
	assert.True(t, errors.Is(err, ErrInvalidState))
	_, err = ReduceEntry(closed, req, r, p)
	assert.True(t, errors.Is(err, ErrInvalidState))
	_, err = CloseEntry(closed, 1, r, p)
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestValidateOpen(t *testing.T) {
	t.Parallel()

	good := OpenRequest{Name: "X", Segment: market.Shenzhen, CurrentPrice: 1, TradePrice: 1, TradeSize: 100}
	require.NoError(t, ValidateOpen(good))

	tests := []struct {
		name   string
		mutate func(*OpenRequest)
		errMsg string
	}{
		{"empty name", func(r *OpenRequest) { r.Name = "  " }, "name"},
		{"bad segment", func(r *OpenRequest) { r.Segment = 0 }, "segment"},
		{"zero size", func(r *OpenRequest) { r.TradeSize = 0 }, "trade size"},
		{"negative price", func(r *OpenRequest) { r.TradePrice = -1 }, "trade price"},
		{"nan current", func(r *OpenRequest) { r.CurrentPrice = math.NaN() }, "current price"},
		{"negative commission", func(r *OpenRequest) { r.CommissionRate = -0.1 }, "commission"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := good
			tt.mutate(&r)
			err := ValidateOpen(r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSafeRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                   string
		profit, cost, position float64
		want                   float64
	}{
		{"normal", 100, 10, 100, 0.1},
		{"negative cost uses magnitude", -50, -10, 100, -0.05},
		{"zero cost", 100, 0, 100, 0},
		{"zero position", 100, 10, 0, 0},
		{"both zero", 0, 0, 0, 0},
		{"nan profit", math.NaN(), 10, 10, 0},
		{"inf profit", math.Inf(1), 10, 10, 0},
		{"inf cost", 5, math.Inf(1), 1, 0},
		{"tiny denominator", 1, 1e-200, 1e-200, 0},
	}
	for _, tt := range tests {
		got := SafeRate(tt.profit, tt.cost, tt.position)
		assert.InDelta(t, tt.want, got, 1e-12, tt.name)
		assert.False(t, math.IsNaN(got) || math.IsInf(got, 0), tt.name)
	}
}

// A random walk of valid actions never yields a negative position or a
// non-finite profit rate.
func TestRandomHistoryInvariants(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	sched := fee.DefaultSchedule()
	p := fee.DefaultPolicy()

	for run := 0; run < 50; run++ {
		price := func() float64 { return 1 + rng.Float64()*50 }
		e, err := OpenEntry(OpenRequest{
			Name: "R", Segment: market.ChiNext,
			CurrentPrice: price(), TradePrice: price(), TradeSize: float64(100 * (1 + rng.Intn(20))),
		}, fee.Resolve(sched, market.ChiNext, market.Open, 0), p)
		require.NoError(t, err)

		for step := 0; step < 30 && e.Action != market.Close; step++ {
			var next Entry
			switch rng.Intn(4) {
			case 0, 1:
				next, err = AddEntry(e, TradeRequest{price(), price(), float64(100 * (1 + rng.Intn(10)))},
					fee.Resolve(sched, market.ChiNext, market.Add, 0), p)
			case 2:
				size := math.Floor(e.Position * rng.Float64())
				next, err = ReduceEntry(e, TradeRequest{price(), price(), size},
					fee.Resolve(sched, market.ChiNext, market.Reduce, 0), p)
				if size <= 0 {
					require.Error(t, err)
					continue
				}
			default:
				next, err = CloseEntry(e, price(), fee.Resolve(sched, market.ChiNext, market.Close, 0), p)
			}
			require.NoError(t, err)

			assert.GreaterOrEqual(t, next.Position, 0.0)
			assert.Equal(t, next.Action == market.Close, next.Position == 0)
			assert.False(t, math.IsNaN(next.ProfitRate) || math.IsInf(next.ProfitRate, 0))
			assert.GreaterOrEqual(t, next.TotalFee, e.TotalFee)
			e = next
		}
	}
}
