package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountingPeriod is the billing cadence of a tariff history item.
type AccountingPeriod string

const (
	PeriodMonthly AccountingPeriod = "monthly"
	PeriodAnnual  AccountingPeriod = "annual"
)

// IsAnnual reports whether the period is billed yearly.
func (p AccountingPeriod) IsAnnual() bool {
	return p == PeriodAnnual
}

// TariffPrice holds the prices without tax of a tariff in a single currency.
type TariffPrice struct {
	Currency string
	Monthly  decimal.Decimal
	Annual   decimal.Decimal
}

// Tariff is a pricing plan with prices per currency.
type Tariff struct {
	ID     int64
	Name   string
	Prices []TariffPrice
}

// PriceFor returns the price of the tariff in the given currency.
func (t *Tariff) PriceFor(currency string) (TariffPrice, error) {
	code := NormalizeCurrency(currency)
	for _, p := range t.Prices {
		if NormalizeCurrency(p.Currency) == code {
			return p, nil
		}
	}
	return TariffPrice{}, fmt.Errorf("tariff %d has no price in %s", t.ID, code)
}

// UnitPrice returns the price without tax for the given period.
func (p TariffPrice) UnitPrice(period AccountingPeriod) decimal.Decimal {
	if period.IsAnnual() {
		return p.Annual
	}
	return p.Monthly
}

// TariffHistoryItem is a billed subscription period tied to a tariff.
type TariffHistoryItem struct {
	ID               int64
	InvoiceID        int64
	Tariff           *Tariff
	AccountingPeriod AccountingPeriod
	Title            string // Invoice line title
}
