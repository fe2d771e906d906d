// Package format renders loan amounts for display. Values are rounded here
// and only here; the amortization package never rounds.
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// RubleSign is appended to formatted currency amounts.
const RubleSign = "₽"

// Formatter renders numbers for one locale.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter creates a formatter for the given BCP 47 tag. Unknown tags
// fall back to Russian.
func NewFormatter(tag string) *Formatter {
	lang, err := language.Parse(tag)
	if err != nil {
		lang = language.Russian
	}
	return &Formatter{printer: message.NewPrinter(lang)}
}

var russian = NewFormatter("ru-RU")

// Currency formats amount as whole rubles, e.g. "1 234 567 ₽".
func (f *Formatter) Currency(amount float64) string {
	rubles := decimal.NewFromFloat(amount).RoundBank(0).IntPart()
	return f.printer.Sprintf("%d %s", rubles, RubleSign)
}

// Number formats v with locale grouping and at most three fraction digits.
func (f *Formatter) Number(v float64) string {
	rounded := decimal.NewFromFloat(v).Round(3).InexactFloat64()
	return f.printer.Sprint(number.Decimal(rounded, number.MaxFractionDigits(3)))
}

// Currency formats amount with the default ru-RU formatter.
func Currency(amount float64) string {
	return russian.Currency(amount)
}

// Number formats v with the default ru-RU formatter.
func Number(v float64) string {
	return russian.Number(v)
}

// Round2 rounds a monetary amount to kopecks, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
