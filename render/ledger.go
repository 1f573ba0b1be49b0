package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/rustyeddy/stockledger/fee"
	"github.com/rustyeddy/stockledger/ledger"
	"github.com/rustyeddy/stockledger/market"
	"github.com/rustyeddy/stockledger/risk"
)

var right = md.AlignRight

// SummariesMarkdown renders the position list.
func SummariesMarkdown(sums []ledger.Summary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Positions")
	if len(sums) == 0 {
		doc.PlainText("No instruments yet.")
		return doc.String()
	}

	var value, profit float64
	rows := make([][]string, 0, len(sums))
	for _, s := range sums {
		in := s.Instrument
		row := []string{strconv.FormatInt(in.ID, 10), in.Name, in.Segment.String(), in.Status.String()}
		if e := s.Latest; e != nil {
			row = append(row,
				Quantity(e.Position),
				Price(e.Cost),
				Price(e.CurrentPrice),
				Money(e.Profit),
				Percent(e.ProfitRate),
				Money(e.TotalFee),
			)
			value += e.Position * e.CurrentPrice
			profit += e.Profit
		} else {
			row = append(row, "-", "-", "-", "-", "-", "-")
		}
		rows = append(rows, row)
	}

	doc.Table(md.TableSet{
		Header:    []string{"ID", "Name", "Segment", "Status", "Position", "Cost", "Price", "Profit", "Rate", "Fees"},
		Rows:      rows,
		Alignment: []md.TableAlignment{right, md.AlignLeft, md.AlignLeft, md.AlignLeft, right, right, right, right, right, right},
	})
	doc.PlainText(fmt.Sprintf("Market value: %s, profit: %s", Money(value), Money(profit)))

	return doc.String()
}

// InstrumentMarkdown renders one instrument and its full history.
func InstrumentMarkdown(in ledger.Instrument, entries []ledger.Entry) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1f("%s (%s)", in.Name, market.Segments[in.Segment].Code)
	doc.BulletList(
		fmt.Sprintf("Status: %s", in.Status),
		fmt.Sprintf("Commission rate: %s", commission(in.CommissionRate)),
		fmt.Sprintf("Opened: %s", when(in.CreatedAt)),
	)

	if n := len(entries); n > 0 {
		e := entries[n-1]
		doc.H2("Current")
		doc.BulletList(
			fmt.Sprintf("Position: %s @ %s", Quantity(e.Position), Price(e.Cost)),
			fmt.Sprintf("Price: %s", Price(e.CurrentPrice)),
			fmt.Sprintf("Profit: %s (%s)", Money(e.Profit), Percent(e.ProfitRate)),
			fmt.Sprintf("Fees paid: %s", Money(e.TotalFee)),
		)
	}

	doc.H2("Actions")
	doc.PlainText(EntriesTable(entries))
	return doc.String()
}

// EntriesTable renders entries as a bare markdown table.
func EntriesTable(entries []ledger.Entry) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.Action.String(),
			Price(e.TradePrice),
			Quantity(e.TradeSize),
			Price(e.CurrentPrice),
			Price(e.Cost),
			Quantity(e.Position),
			Money(e.Fees.Total()),
			Money(e.Profit),
			Percent(e.ProfitRate),
			when(e.ActionTime),
			cell(e.Note),
		})
	}
	doc.Table(md.TableSet{
		Header:    []string{"ID", "Action", "Trade price", "Size", "Price", "Cost", "Position", "Fee", "Profit", "Rate", "Time", "Note"},
		Rows:      rows,
		Alignment: []md.TableAlignment{right, md.AlignLeft, right, right, right, right, right, right, right, right, md.AlignLeft, md.AlignLeft},
	})
	return doc.String()
}

// EntryMarkdown renders the result of a single trade action.
func EntryMarkdown(in ledger.Instrument, e ledger.Entry) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H2f("%s %s", strings.ToUpper(e.Action.String()), in.Name)
	doc.BulletList(
		fmt.Sprintf("Trade: %s @ %s", Quantity(e.TradeSize), Price(e.TradePrice)),
		fmt.Sprintf("Fees: %s (commission %s, tax %s)", Money(e.Fees.Total()), Money(e.Fees.Commission), Money(e.Fees.Tax)),
		fmt.Sprintf("Position: %s @ %s", Quantity(e.Position), Price(e.Cost)),
		fmt.Sprintf("Profit: %s (%s)", Money(e.Profit), Percent(e.ProfitRate)),
	)
	return doc.String()
}

// FeeScheduleMarkdown renders the schedule defaults, segment overrides and
// minimum commissions.
func FeeScheduleMarkdown(s fee.Schedule, p fee.Policy) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1f("Fee schedule: %s", s.Name)

	header := []string{"Applies to", "Commission", "Stamp tax", "Regulatory", "Brokerage", "Transfer"}
	rows := [][]string{rateRow("default", s.Defaults)}
	for _, seg := range market.AllSegments() {
		if r, ok := s.Segments[seg]; ok {
			rows = append(rows, rateRow(seg.String(), r))
		}
	}
	doc.Table(md.TableSet{Header: header, Rows: rows})
	doc.PlainText("Stamp tax is charged on reduce and close only.")

	var floors []string
	for _, k := range []market.ActionKind{market.Open, market.Add, market.Reduce, market.Close} {
		if v := p.Floor(k); v > 0 {
			floors = append(floors, fmt.Sprintf("%s: %s", k, Money(v)))
		}
	}
	if len(floors) > 0 {
		doc.H2("Minimum commission")
		doc.BulletList(floors...)
	}
	return doc.String()
}

// LadderMarkdown renders a limit ladder.
func LadderMarkdown(l risk.Ladder, rungs []risk.Rung) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1f("Limit ladder: %s x %s at %s per day",
		Price(l.StartPrice), Quantity(l.Quantity), Percent(l.DailyChangePct/100))

	rows := make([][]string, 0, len(rungs))
	for _, r := range rungs {
		rows = append(rows, []string{
			strconv.Itoa(r.Day),
			decimal2(r.Price),
			Percent(r.ChangePct / 100),
			decimal2(r.Change),
			Money(r.MarketValue),
		})
	}
	doc.Table(md.TableSet{
		Header:    []string{"Day", "Price", "Change %", "Change", "Market value"},
		Rows:      rows,
		Alignment: []md.TableAlignment{right, right, right, right, right},
	})
	return doc.String()
}

func rateRow(name string, r fee.Rates) []string {
	return []string{name, Rate(r.Commission), Rate(r.Tax), Rate(r.Regulatory), Rate(r.Brokerage), Rate(r.Transfer)}
}

func commission(r float64) string {
	if r <= 0 {
		return "schedule"
	}
	return Rate(r)
}

// cell keeps free text from breaking the table layout.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.Join(strings.Fields(s), " ")
}
