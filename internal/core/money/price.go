// Package money formats minor-unit amounts for display.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DefaultLocale   = "es-MX"
	DefaultCurrency = "MXN"
)

// placement says where the currency symbol goes. x/text always renders
// "symbol amount", so locales that write the symbol differently are listed here.
type placement struct {
	after  bool
	spaced bool
}

var placements = map[string]placement{
	"es-ES": {after: true, spaced: true},
	"fr-FR": {after: true, spaced: true},
	"de-DE": {after: true, spaced: true},
	"es-AR": {spaced: true},
	"pt-BR": {spaced: true},
	"de-CH": {spaced: true},
}

// symbols holds the display symbol per currency; the "" key is the fallback
// for locales without an override.
var symbols = map[string]map[string]string{
	"MXN": {"": "$", "en-US": "MX$", "es-ES": "MXN"},
	"USD": {"": "US$", "en-US": "$", "es-MX": "USD"},
	"EUR": {"": "€"},
	"BRL": {"": "R$"},
	"ARS": {"": "$", "en-US": "ARS", "es-MX": "ARS"},
}

type options struct {
	locale   string
	currency string
}

type Option func(*options)

func WithLocale(tag string) Option {
	return func(o *options) { o.locale = tag }
}

func WithCurrency(code string) Option {
	return func(o *options) { o.currency = code }
}

// FormatPrice renders an amount given in cents with exactly two decimals,
// e.g. FormatPrice(150025) == "$1,500.25" for the es-MX/MXN defaults.
// Digits, grouping and the decimal separator follow the locale's CLDR data.
func FormatPrice(cents int64, opts ...Option) string {
	o := options{locale: DefaultLocale, currency: DefaultCurrency}
	for _, opt := range opts {
		opt(&o)
	}

	tag := resolveLocale(o.locale)
	locale := tag.String()
	symbol := resolveSymbol(o.currency, locale)
	place := placements[locale]

	amount := decimal.New(cents, -2)
	digits := message.NewPrinter(tag).Sprint(number.Decimal(amount.Abs().InexactFloat64(), number.Scale(2)))

	var b strings.Builder
	if amount.IsNegative() {
		b.WriteString("-")
	}
	sep := ""
	if place.spaced {
		sep = " "
	}
	if place.after {
		b.WriteString(digits + sep + symbol)
	} else {
		b.WriteString(symbol + sep + digits)
	}
	return b.String()
}

// FormatNullablePrice treats a missing amount as zero.
func FormatNullablePrice(cents *int64, opts ...Option) string {
	if cents == nil {
		return FormatPrice(0, opts...)
	}
	return FormatPrice(*cents, opts...)
}

func resolveLocale(tag string) language.Tag {
	parsed, err := language.Parse(tag)
	if err != nil || parsed == language.Und {
		return language.MustParse(DefaultLocale)
	}
	return parsed
}

func resolveSymbol(code, locale string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.MustParseISO(DefaultCurrency)
	}
	iso := unit.String()
	table, ok := symbols[iso]
	if !ok {
		return iso
	}
	if s, ok := table[locale]; ok {
		return s
	}
	return table[""]
}
