package fee

import (
	"fmt"
	"math"

	"github.com/rustyeddy/stockledger/market"
)

// DefaultMinCommission is the broker's minimum commission charged on an
// opening trade.
const DefaultMinCommission = 5.0

// DefaultInstrumentCommission is the commission rate given to a newly
// opened instrument when the caller does not negotiate one.
const DefaultInstrumentCommission = 0.0003

// Rates holds the five proportional fee rates applied to a trade's value.
type Rates struct {
	Commission float64 `json:"commission" yaml:"commission"`
	Tax        float64 `json:"tax" yaml:"tax"`
	Regulatory float64 `json:"regulatory" yaml:"regulatory"`
	Brokerage  float64 `json:"brokerage" yaml:"brokerage"`
	Transfer   float64 `json:"transfer" yaml:"transfer"`
}

// Validate rejects negative or non-finite rates.
func (r Rates) Validate() error {
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"commission", r.Commission},
		{"tax", r.Tax},
		{"regulatory", r.Regulatory},
		{"brokerage", r.Brokerage},
		{"transfer", r.Transfer},
	} {
		if v.val < 0 || math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return fmt.Errorf("%s rate must be a non-negative number, got %v", v.name, v.val)
		}
	}
	return nil
}

// Fees are the fee amounts charged on one trade.
type Fees struct {
	Commission float64 `json:"commission"`
	Tax        float64 `json:"tax"`
	Regulatory float64 `json:"regulatory"`
	Brokerage  float64 `json:"brokerage"`
	Transfer   float64 `json:"transfer"`
}

func (f Fees) Total() float64 {
	return f.Commission + f.Tax + f.Regulatory + f.Brokerage + f.Transfer
}

// Policy is the per-action minimum commission table.
type Policy struct {
	MinCommission map[market.ActionKind]float64
}

// DefaultPolicy applies the minimum commission to opening trades only.
func DefaultPolicy() Policy {
	return Policy{MinCommission: map[market.ActionKind]float64{
		market.Open: DefaultMinCommission,
	}}
}

// Floor returns the minimum commission for the action, 0 when none applies.
func (p Policy) Floor(kind market.ActionKind) float64 {
	if p.MinCommission == nil {
		return 0
	}
	return p.MinCommission[kind]
}

// Compute charges the rates against value. The commission is raised to the
// policy floor for the action kind.
func Compute(value float64, r Rates, kind market.ActionKind, p Policy) Fees {
	return Fees{
		Commission: math.Max(value*r.Commission, p.Floor(kind)),
		Tax:        value * r.Tax,
		Regulatory: value * r.Regulatory,
		Brokerage:  value * r.Brokerage,
		Transfer:   value * r.Transfer,
	}
}
