package api

import (
	"time"

	"github.com/rustyeddy/stockledger/fee"
	"github.com/rustyeddy/stockledger/ledger"
	"github.com/rustyeddy/stockledger/market"
	"github.com/rustyeddy/stockledger/risk"
)

// OpenRequest opens a position. A missing commission_rate uses the
// server's default instrument commission.
type OpenRequest struct {
	Name           string         `json:"name"`
	Segment        market.Segment `json:"segment"`
	CurrentPrice   float64        `json:"current_price"`
	TradePrice     float64        `json:"trade_price"`
	TradeSize      float64        `json:"trade_size"`
	CommissionRate *float64       `json:"commission_rate,omitempty"`
}

type CloseRequest struct {
	CurrentPrice float64 `json:"current_price"`
}

type ReorderRequest struct {
	IDs []int64 `json:"ids"`
}

type NoteRequest struct {
	Note       string     `json:"note"`
	ActionTime *time.Time `json:"action_time,omitempty"`
}

// InstrumentDetail is an instrument with its full history.
type InstrumentDetail struct {
	Instrument ledger.Instrument `json:"instrument"`
	Entries    []ledger.Entry    `json:"entries"`
}

// FeesResponse is the active schedule plus the minimum commission table.
type FeesResponse struct {
	Schedule      fee.Schedule       `json:"schedule"`
	MinCommission map[string]float64 `json:"min_commission"`
}

type LadderResponse struct {
	Ladder risk.Ladder `json:"ladder"`
	Rungs  []risk.Rung `json:"rungs"`
}

// ErrorResponse is returned for all errors
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}
