package ledger

import (
	"fmt"
	"math"
	"strings"

	"github.com/rustyeddy/stockledger/fee"
	"github.com/rustyeddy/stockledger/market"
)

// Epsilon is the tolerance used when comparing prices and share counts.
const Epsilon = 1e-9

// machineEpsilon is the gap between 1.0 and the next float64.
const machineEpsilon = 2.220446049250313e-16

// SafeRate returns profit / |cost × position|. A denominator below machine
// epsilon, or a non-finite quotient, yields 0.
func SafeRate(profit, cost, position float64) float64 {
	denom := math.Abs(cost * position)
	if denom < machineEpsilon || math.IsNaN(denom) {
		return 0
	}
	r := profit / denom
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

func positive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidInput, name, v)
	}
	return nil
}

// ValidateOpen checks an open request before anything is written.
func ValidateOpen(req OpenRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}
	if !req.Segment.Valid() {
		return fmt.Errorf("%w: unknown segment %d", ErrInvalidInput, int(req.Segment))
	}
	if err := positive("current price", req.CurrentPrice); err != nil {
		return err
	}
	if err := positive("trade price", req.TradePrice); err != nil {
		return err
	}
	if err := positive("trade size", req.TradeSize); err != nil {
		return err
	}
	if req.CommissionRate < 0 || math.IsNaN(req.CommissionRate) || math.IsInf(req.CommissionRate, 0) {
		return fmt.Errorf("%w: commission rate must not be negative, got %v", ErrInvalidInput, req.CommissionRate)
	}
	return nil
}

func validateTrade(req TradeRequest) error {
	if err := positive("current price", req.CurrentPrice); err != nil {
		return err
	}
	if err := positive("trade price", req.TradePrice); err != nil {
		return err
	}
	return positive("trade size", req.TradeSize)
}

func requireHolding(latest Entry) error {
	if latest.Action == market.Close || latest.Position <= Epsilon {
		return fmt.Errorf("%w: position is already closed", ErrInvalidState)
	}
	return nil
}

// OpenEntry computes the first entry of a new position. rates must already
// be resolved for market.Open.
func OpenEntry(req OpenRequest, rates fee.Rates, p fee.Policy) (Entry, error) {
	if err := ValidateOpen(req); err != nil {
		return Entry{}, err
	}

	fees := fee.Compute(req.TradePrice*req.TradeSize, rates, market.Open, p)
	e := Entry{
		CurrentPrice: req.CurrentPrice,
		Cost:         req.TradePrice,
		Position:     req.TradeSize,
		TotalFee:     fees.Total(),
		TradePrice:   req.TradePrice,
		TradeSize:    req.TradeSize,
		Fees:         fees,
		Action:       market.Open,
	}
	e.Profit = (e.CurrentPrice - e.Cost) * e.Position
	e.ProfitRate = SafeRate(e.Profit, e.Cost, e.Position)
	return e, nil
}

// AddEntry computes the entry for buying more shares into an open position.
func AddEntry(latest Entry, req TradeRequest, rates fee.Rates, p fee.Policy) (Entry, error) {
	if err := requireHolding(latest); err != nil {
		return Entry{}, err
	}
	if err := validateTrade(req); err != nil {
		return Entry{}, err
	}

	position := latest.Position + req.TradeSize
	cost := (latest.Cost*latest.Position + req.TradePrice*req.TradeSize) / position
	fees := fee.Compute(req.TradePrice*req.TradeSize, rates, market.Add, p)

	e := Entry{
		InstrumentID: latest.InstrumentID,
		CurrentPrice: req.CurrentPrice,
		Cost:         cost,
		Position:     position,
		TotalFee:     latest.TotalFee + fees.Total(),
		TradePrice:   req.TradePrice,
		TradeSize:    req.TradeSize,
		Fees:         fees,
		Action:       market.Add,
	}
	e.Profit = (e.CurrentPrice - e.Cost) * e.Position
	e.ProfitRate = SafeRate(e.Profit, e.Cost, e.Position)
	return e, nil
}

// ReduceEntry computes the entry for selling part of an open position. The
// trade size must be strictly less than the held position; selling
// everything is a close.
//
// The new cost carries the remaining basis forward as
// (cost×position − tradePrice×tradeSize) / remaining.
func ReduceEntry(latest Entry, req TradeRequest, rates fee.Rates, p fee.Policy) (Entry, error) {
	if err := requireHolding(latest); err != nil {
		return Entry{}, err
	}
	if err := validateTrade(req); err != nil {
		return Entry{}, err
	}
	if req.TradeSize >= latest.Position-Epsilon {
		return Entry{}, fmt.Errorf("%w: reduce size %v must be less than position %v; close the position instead",
			ErrInvalidInput, req.TradeSize, latest.Position)
	}

	position := latest.Position - req.TradeSize
	cost := (latest.Cost*latest.Position - req.TradePrice*req.TradeSize) / position
	fees := fee.Compute(req.TradePrice*req.TradeSize, rates, market.Reduce, p)

	e := Entry{
		InstrumentID: latest.InstrumentID,
		CurrentPrice: req.CurrentPrice,
		Cost:         cost,
		Position:     position,
		TotalFee:     latest.TotalFee + fees.Total(),
		TradePrice:   req.TradePrice,
		TradeSize:    req.TradeSize,
		Fees:         fees,
		Action:       market.Reduce,
	}
	e.Profit = (e.CurrentPrice - e.Cost) * e.Position
	e.ProfitRate = SafeRate(e.Profit, e.Cost, e.Position)
	return e, nil
}

// CloseEntry sells the whole position at currentPrice. Profit is measured
// against the pre-close cost and position; the resulting cost and position
// are both 0.
func CloseEntry(latest Entry, currentPrice float64, rates fee.Rates, p fee.Policy) (Entry, error) {
	if err := requireHolding(latest); err != nil {
		return Entry{}, err
	}
	if err := positive("current price", currentPrice); err != nil {
		return Entry{}, err
	}

	fees := fee.Compute(currentPrice*latest.Position, rates, market.Close, p)
	profit := (currentPrice - latest.Cost) * latest.Position

	return Entry{
		InstrumentID: latest.InstrumentID,
		CurrentPrice: currentPrice,
		Cost:         0,
		Position:     0,
		TotalFee:     latest.TotalFee + fees.Total(),
		TradePrice:   currentPrice,
		TradeSize:    latest.Position,
		Fees:         fees,
		Action:       market.Close,
		Profit:       profit,
		ProfitRate:   SafeRate(profit, latest.Cost, latest.Position),
	}, nil
}
