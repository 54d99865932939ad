package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyEUR is the only currency with reverse-charge and foreign bank account handling.
const CurrencyEUR = "EUR"

// Price is an amount including tax together with its tax share.
type Price struct {
	WithTax  decimal.Decimal
	Tax      decimal.Decimal
	Currency string
}

// SumPrice builds a price from a total including tax and the tax amount.
func SumPrice(withTax, tax decimal.Decimal, currency string) Price {
	return Price{
		WithTax:  withTax,
		Tax:      tax,
		Currency: NormalizeCurrency(currency),
	}
}

// WithoutTax returns the net amount.
func (p Price) WithoutTax() decimal.Decimal {
	return p.WithTax.Sub(p.Tax)
}

// NormalizeCurrency returns an upper-case ISO currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsEUR reports whether code denotes euro.
func IsEUR(code string) bool {
	return NormalizeCurrency(code) == CurrencyEUR
}
