package journal

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/rustyeddy/stockledger/ledger"
)

var csvHeader = []string{
	"ref", "instrument", "segment", "action",
	"trade_price", "trade_size", "current_price", "cost", "position",
	"commission_fee", "tax_fee", "regulatory_fee", "brokerage_fee", "transfer_fee", "total_fee",
	"profit", "profit_rate", "action_time", "created_at", "note",
}

// CSVExporter writes entries as CSV rows, one header line first.
type CSVExporter struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSV writes the header to w. If w is also an io.Closer it is closed by
// Close.
func NewCSV(w io.Writer) (*CSVExporter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return nil, err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}

	c, _ := w.(io.Closer)
	return &CSVExporter{w: cw, closer: c}, nil
}

func (x *CSVExporter) Export(in ledger.Instrument, entries []ledger.Entry) error {
	for _, e := range entries {
		err := x.w.Write([]string{
			e.Ref,
			in.Name,
			in.Segment.String(),
			e.Action.String(),
			f(e.TradePrice),
			f(e.TradeSize),
			f(e.CurrentPrice),
			f(e.Cost),
			f(e.Position),
			f(e.Fees.Commission),
			f(e.Fees.Tax),
			f(e.Fees.Regulatory),
			f(e.Fees.Brokerage),
			f(e.Fees.Transfer),
			f(e.TotalFee),
			f(e.Profit),
			f(e.ProfitRate),
			rfc3339(e.ActionTime),
			rfc3339(e.CreatedAt),
			e.Note,
		})
		if err != nil {
			return err
		}
	}
	x.w.Flush()
	return x.w.Error()
}

func (x *CSVExporter) Close() error {
	x.w.Flush()
	if err := x.w.Error(); err != nil {
		return err
	}
	if x.closer != nil {
		return x.closer.Close()
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func rfc3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
