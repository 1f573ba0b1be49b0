package ledger

import (
	"time"

	"github.com/rustyeddy/stockledger/fee"
	"github.com/rustyeddy/stockledger/market"
)

// Instrument is one tracked stock position.
type Instrument struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Segment        market.Segment `json:"segment"`
	CommissionRate float64        `json:"commission_rate"`
	Status         market.Status  `json:"status"`
	SortIndex      int            `json:"sort_index"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Entry is one trade action and the position snapshot that results from it.
// The latest entry of an instrument is its current state.
type Entry struct {
	ID           int64  `json:"id"`
	Ref          string `json:"ref"`
	InstrumentID int64  `json:"instrument_id"`

	CurrentPrice float64 `json:"current_price"`
	Cost         float64 `json:"cost"`
	Position     float64 `json:"position"`
	TotalFee     float64 `json:"total_fee"`

	TradePrice float64           `json:"trade_price"`
	TradeSize  float64           `json:"trade_size"`
	Fees       fee.Fees          `json:"fees"`
	Action     market.ActionKind `json:"action"`

	Profit     float64 `json:"profit"`
	ProfitRate float64 `json:"profit_rate"`

	Note       string    `json:"note,omitempty"`
	ActionTime time.Time `json:"action_time,omitzero"`
	CreatedAt  time.Time `json:"created_at"`
}

// OpenRequest describes a new position.
type OpenRequest struct {
	Name           string         `json:"name"`
	Segment        market.Segment `json:"segment"`
	CurrentPrice   float64        `json:"current_price"`
	TradePrice     float64        `json:"trade_price"`
	TradeSize      float64        `json:"trade_size"`
	CommissionRate float64        `json:"commission_rate"`
}

// TradeRequest describes an addition to or reduction of a position.
type TradeRequest struct {
	CurrentPrice float64 `json:"current_price"`
	TradePrice   float64 `json:"trade_price"`
	TradeSize    float64 `json:"trade_size"`
}

// Summary pairs an instrument with its derived current state.
type Summary struct {
	Instrument Instrument `json:"instrument"`
	Latest     *Entry     `json:"latest,omitempty"`
}
