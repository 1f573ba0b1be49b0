package risk

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitLadderUp(t *testing.T) {
	t.Parallel()

	rungs, err := LimitLadder(10, 1000, 10, 3)
	require.NoError(t, err)
	require.Len(t, rungs, 3)

	assert.Equal(t, 1, rungs[0].Day)
	assert.InDelta(t, 11.0, rungs[0].Price, 1e-9)
	assert.InDelta(t, 1.0, rungs[0].Change, 1e-9)
	assert.InDelta(t, 10.0, rungs[0].ChangePct, 1e-9)
	assert.InDelta(t, 11000.0, rungs[0].MarketValue, 1e-6)

	assert.InDelta(t, 12.1, rungs[1].Price, 1e-9)
	assert.InDelta(t, 1.1, rungs[1].Change, 1e-9)
	assert.InDelta(t, 13.31, rungs[2].Price, 1e-9)
	assert.InDelta(t, 10.0, rungs[2].ChangePct, 1e-9)
}

func TestLimitLadderDown(t *testing.T) {
	t.Parallel()

	rungs, err := LimitLadder(20, 500, -10, 2)
	require.NoError(t, err)
	require.Len(t, rungs, 2)

	assert.InDelta(t, 18.0, rungs[0].Price, 1e-9)
	assert.InDelta(t, -2.0, rungs[0].Change, 1e-9)
	assert.InDelta(t, -10.0, rungs[0].ChangePct, 1e-9)
	assert.InDelta(t, 16.2, rungs[1].Price, 1e-9)
	assert.InDelta(t, 8100.0, rungs[1].MarketValue, 1e-6)
}

func TestLimitLadderCompounds(t *testing.T) {
	t.Parallel()

	rungs, err := LimitLadder(5, 100, 20, MaxDays)
	require.NoError(t, err)
	require.Len(t, rungs, MaxDays)

	last := rungs[len(rungs)-1]
	assert.Equal(t, MaxDays, last.Day)
	assert.InDelta(t, 5*math.Pow(1.2, MaxDays), last.Price, 1e-6)
}

func TestLimitLadderValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Ladder
	}{
		{"zero start", Ladder{StartPrice: 0, Quantity: 100, DailyChangePct: 10, Days: 1}},
		{"start too high", Ladder{StartPrice: 1000.01, Quantity: 100, DailyChangePct: 10, Days: 1}},
		{"nan start", Ladder{StartPrice: math.NaN(), Quantity: 100, DailyChangePct: 10, Days: 1}},
		{"zero quantity", Ladder{StartPrice: 10, Quantity: 0, DailyChangePct: 10, Days: 1}},
		{"quantity too high", Ladder{StartPrice: 10, Quantity: 1_000_001, DailyChangePct: 10, Days: 1}},
		{"zero days", Ladder{StartPrice: 10, Quantity: 100, DailyChangePct: 10, Days: 0}},
		{"too many days", Ladder{StartPrice: 10, Quantity: 100, DailyChangePct: 10, Days: 31}},
		{"zero change", Ladder{StartPrice: 10, Quantity: 100, DailyChangePct: 0, Days: 1}},
		{"wipeout", Ladder{StartPrice: 10, Quantity: 100, DailyChangePct: -100, Days: 1}},
		{"change too high", Ladder{StartPrice: 10, Quantity: 100, DailyChangePct: 101, Days: 1}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.in.Rungs()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidLadder))
		})
	}
}

func TestLimitLadderBounds(t *testing.T) {
	t.Parallel()

	_, err := LimitLadder(MaxStartPrice, MaxQuantity, 100, MaxDays)
	assert.NoError(t, err)
}
