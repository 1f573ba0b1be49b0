// Package render turns ledger state into markdown reports for the terminal.
package render

import (
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the ISO code every amount in the ledger is denominated in.
const Currency = money.CNY

// Money formats an amount in Currency, rounded to the currency's minor unit.
func Money(amount float64) string {
	m := money.New(0, Currency)
	frac := int32(m.Currency().Fraction)
	minor := decimal.NewFromFloat(amount).Shift(frac).Round(0).IntPart()
	return money.New(minor, Currency).Display()
}

// Price formats a share price with three decimals.
func Price(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(3)
}

// Quantity formats a share count without trailing zeros.
func Quantity(v float64) string {
	return decimal.NewFromFloat(v).Round(4).String()
}

// Percent formats a ratio (0.0123) as a signed percentage (+1.23%).
func Percent(ratio float64) string {
	d := decimal.NewFromFloat(ratio).Shift(2).Round(2)
	s := d.StringFixed(2) + "%"
	if d.IsPositive() {
		return "+" + s
	}
	return s
}

// Rate formats a fee rate as a percentage with enough places for
// per-mille and per-myriad rates.
func Rate(r float64) string {
	return decimal.NewFromFloat(r).Shift(2).StringFixed(5) + "%"
}

func when(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

func decimal2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
