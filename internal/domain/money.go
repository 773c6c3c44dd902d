package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultLocale = "es-MX"
	DefaultSymbol = "$"
)

// Formatter renders amounts for display with two decimals and the grouping
// rules of a locale. Computation never goes through these strings.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

func NewFormatter(locale, symbol string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return &Formatter{printer: message.NewPrinter(tag), symbol: symbol}
}

func (f *Formatter) Format(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + f.symbol + f.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// ParseAmount reads a positive monetary amount typed by an operator.
func ParseAmount(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, FormatError(field, "El monto es obligatorio")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, FormatError(field, "El monto debe ser un número válido")
	}
	if !d.IsPositive() {
		return decimal.Zero, FormatError(field, "El monto debe ser mayor a cero")
	}
	return d, nil
}
