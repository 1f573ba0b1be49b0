package fee

import (
	"fmt"

	"github.com/rustyeddy/stockledger/market"
)

// DefaultScheduleName names the seeded schedule row.
const DefaultScheduleName = "default"

// Schedule is the active fee schedule. Defaults apply to every segment
// without an entry in Segments.
type Schedule struct {
	Name     string                  `json:"name" yaml:"name"`
	Defaults Rates                   `json:"defaults" yaml:"defaults"`
	Segments map[market.Segment]Rates `json:"segments,omitempty" yaml:"segments,omitempty"`
}

// DefaultRates are the exchange rates the schedule is seeded with.
func DefaultRates() Rates {
	return Rates{
		Commission: 0.0001,
		Tax:        0.001,
		Regulatory: 0.00002,
		Brokerage:  0.0000487,
		Transfer:   0.00001,
	}
}

func DefaultSchedule() Schedule {
	return Schedule{Name: DefaultScheduleName, Defaults: DefaultRates()}
}

// For returns the schedule's rates for a segment before any action
// adjustment.
func (s Schedule) For(seg market.Segment) Rates {
	if r, ok := s.Segments[seg]; ok {
		return r
	}
	return s.Defaults
}

func (s Schedule) Validate() error {
	if err := s.Defaults.Validate(); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	for seg, r := range s.Segments {
		if !seg.Valid() {
			return fmt.Errorf("unknown segment %d", int(seg))
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%s: %w", seg, err)
		}
	}
	return nil
}

// Resolve returns the rates charged on a trade of the given kind in seg.
// Buy-side actions pay no stamp tax. A positive commissionOverride replaces
// the schedule's commission rate.
func Resolve(s Schedule, seg market.Segment, kind market.ActionKind, commissionOverride float64) Rates {
	r := s.For(seg)
	if !kind.IsSell() {
		r.Tax = 0
	}
	if commissionOverride > 0 {
		r.Commission = commissionOverride
	}
	return r
}
