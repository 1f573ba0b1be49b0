package journal

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rustyeddy/stockledger/ledger"
)

// FormatEntryOrg renders an entry as an Org-mode block suitable for pasting
// into a trading journal. Structured facts go in a PROPERTIES drawer; the
// entry's note seeds the Review section.
func FormatEntryOrg(in ledger.Instrument, e ledger.Entry) string {
	heading := fmt.Sprintf("** %s: %s (%s)", strings.ToUpper(e.Action.String()), in.Name, shortID(e.Ref))
	when := e.ActionTime
	if when.IsZero() {
		when = e.CreatedAt
	}

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ID: %s\n", e.Ref))
	b.WriteString(fmt.Sprintf(":ENTRY_ID: %d\n", e.ID))
	b.WriteString(fmt.Sprintf(":INSTRUMENT: %s\n", in.Name))
	b.WriteString(fmt.Sprintf(":SEGMENT: %s\n", in.Segment))
	b.WriteString(fmt.Sprintf(":ACTION: %s\n", e.Action))
	b.WriteString(fmt.Sprintf(":TRADE_PRICE: %.3f\n", e.TradePrice))
	b.WriteString(fmt.Sprintf(":TRADE_SIZE: %.0f\n", e.TradeSize))
	b.WriteString(fmt.Sprintf(":COST: %.4f\n", e.Cost))
	b.WriteString(fmt.Sprintf(":POSITION: %.0f\n", e.Position))
	b.WriteString(fmt.Sprintf(":FEE: %.2f\n", e.Fees.Total()))
	b.WriteString(fmt.Sprintf(":TOTAL_FEE: %.2f\n", e.TotalFee))
	b.WriteString(fmt.Sprintf(":PROFIT: %.2f\n", e.Profit))
	b.WriteString(fmt.Sprintf(":PROFIT_RATE: %.2f%%\n", e.ProfitRate*100))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", when.Format(time.RFC3339)))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Review\n- ")
	b.WriteString(e.Note)
	b.WriteString("\n")

	return b.String()
}

// FormatEntriesOrg renders an instrument heading followed by its entries.
func FormatEntriesOrg(in ledger.Instrument, entries []ledger.Entry) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("* %s [%s]\n\n", in.Name, in.Status))
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatEntryOrg(in, e))
	}
	return b.String()
}

// OrgExporter writes FormatEntriesOrg blocks to w.
type OrgExporter struct {
	w     io.Writer
	count int
}

func NewOrg(w io.Writer) *OrgExporter {
	return &OrgExporter{w: w}
}

func (x *OrgExporter) Export(in ledger.Instrument, entries []ledger.Entry) error {
	if x.count > 0 {
		if _, err := io.WriteString(x.w, "\n"); err != nil {
			return err
		}
	}
	x.count++
	_, err := io.WriteString(x.w, FormatEntriesOrg(in, entries))
	return err
}

func (x *OrgExporter) Close() error {
	if c, ok := x.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
