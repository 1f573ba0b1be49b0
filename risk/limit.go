// Package risk projects how a holding's value moves over consecutive
// limit-up or limit-down sessions.
package risk

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidLadder = errors.New("invalid ladder")

const (
	MaxStartPrice = 1000.0
	MaxQuantity   = 1_000_000.0
	MaxDays       = 30
)

// Rung is one session of a ladder.
type Rung struct {
	Day         int     `json:"day"`
	Price       float64 `json:"price"`
	Change      float64 `json:"change"`
	ChangePct   float64 `json:"change_pct"`
	MarketValue float64 `json:"market_value"`
}

// Ladder is the input of LimitLadder.
type Ladder struct {
	StartPrice     float64 `json:"start_price"`
	Quantity       float64 `json:"quantity"`
	DailyChangePct float64 `json:"daily_change_pct"`
	Days           int     `json:"days"`
}

func (l Ladder) Validate() error {
	switch {
	case !(l.StartPrice > 0) || l.StartPrice > MaxStartPrice:
		return fmt.Errorf("%w: start price must be in (0, %g], got %v", ErrInvalidLadder, MaxStartPrice, l.StartPrice)
	case !(l.Quantity > 0) || l.Quantity > MaxQuantity:
		return fmt.Errorf("%w: quantity must be in (0, %g], got %v", ErrInvalidLadder, MaxQuantity, l.Quantity)
	case l.Days <= 0 || l.Days > MaxDays:
		return fmt.Errorf("%w: days must be in [1, %d], got %d", ErrInvalidLadder, MaxDays, l.Days)
	case l.DailyChangePct == 0 || !(l.DailyChangePct > -100) || l.DailyChangePct > 100:
		return fmt.Errorf("%w: daily change must be non-zero and in (-100, 100], got %v", ErrInvalidLadder, l.DailyChangePct)
	}
	return nil
}

// LimitLadder compounds the start price by the daily change for each day.
// Change and ChangePct compare each day with the one before it.
func LimitLadder(startPrice, quantity, dailyChangePct float64, days int) ([]Rung, error) {
	return Ladder{
		StartPrice:     startPrice,
		Quantity:       quantity,
		DailyChangePct: dailyChangePct,
		Days:           days,
	}.Rungs()
}

func (l Ladder) Rungs() ([]Rung, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	step := 1 + l.DailyChangePct/100
	out := make([]Rung, 0, l.Days)
	prev := l.StartPrice
	for i := 0; i < l.Days; i++ {
		price := l.StartPrice * math.Pow(step, float64(i+1))
		out = append(out, Rung{
			Day:         i + 1,
			Price:       price,
			Change:      price - prev,
			ChangePct:   (price - prev) / prev * 100,
			MarketValue: price * l.Quantity,
		})
		prev = price
	}
	return out, nil
}
