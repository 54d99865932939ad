package store

import (
	"time"

	"crmsync/pkg/models"
	"github.com/shopspring/decimal"
)

type billingAddress struct {
	Company   string
	FirstName string
	LastName  string
	Street    string
	City      string
	Zip       string
	Country   string `gorm:"size:2"`
	CIN       string `gorm:"index"`
	TIN       string
}

type projectRecord struct {
	ID                int64  `gorm:"primaryKey"`
	ShortTitle        string `gorm:"not null"`
	Currency          string `gorm:"size:3;not null"`
	VATPayer          bool
	PercentDiscount   decimal.Decimal `gorm:"type:decimal(5,2)"`
	ExternalID        int64           `gorm:"index"`
	Email             string
	InvoiceEmail      string
	Phone             string
	DefaultURL        string
	HasBillingAddress bool
	Billing           billingAddress `gorm:"embedded;embeddedPrefix:billing_"`
	UpdatedAt         time.Time
}

func (projectRecord) TableName() string { return "projects" }

type invoiceRecord struct {
	ID           int64 `gorm:"primaryKey"`
	ProjectID    int64 `gorm:"index;not null"`
	ExternalID   int64 `gorm:"index"`
	Code         string
	VarSymbol    string
	Created      time.Time
	DueDate      time.Time
	PaymentDate  *time.Time
	Sent         *time.Time
	PriceWithTax decimal.Decimal `gorm:"type:decimal(12,2)"`
	PriceTax     decimal.Decimal `gorm:"type:decimal(12,2)"`
	Currency     string          `gorm:"size:3"`
	PaidAmount   decimal.Decimal `gorm:"type:decimal(12,2)"`
	PriceToPay   decimal.Decimal `gorm:"type:decimal(12,2)"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(12,4)"`
	Proforma     bool
	Cancelled    bool
	MustPay      bool
	ExternalURL  string
	UpdatedAt    time.Time
}

func (invoiceRecord) TableName() string { return "invoices" }

type tariffRecord struct {
	ID     int64  `gorm:"primaryKey"`
	Name   string `gorm:"not null"`
	Prices []tariffPriceRecord `gorm:"foreignKey:TariffID"`
}

func (tariffRecord) TableName() string { return "tariffs" }

type tariffPriceRecord struct {
	ID       int64           `gorm:"primaryKey"`
	TariffID int64           `gorm:"index;not null"`
	Currency string          `gorm:"size:3;not null"`
	Monthly  decimal.Decimal `gorm:"type:decimal(12,2)"`
	Annual   decimal.Decimal `gorm:"type:decimal(12,2)"`
}

func (tariffPriceRecord) TableName() string { return "tariff_prices" }

type tariffHistoryRecord struct {
	ID               int64 `gorm:"primaryKey"`
	InvoiceID        int64 `gorm:"index;not null"`
	TariffID         int64
	Tariff           *tariffRecord `gorm:"foreignKey:TariffID"`
	AccountingPeriod string        `gorm:"size:16;not null"`
	Title            string
}

func (tariffHistoryRecord) TableName() string { return "tariff_history" }

type adminUserRecord struct {
	ID        int64  `gorm:"primaryKey"`
	ProjectID int64  `gorm:"index;not null"`
	Email     string `gorm:"not null"`
}

func (adminUserRecord) TableName() string { return "admin_users" }

func toProject(r *projectRecord) *models.Project {
	p := &models.Project{
		ID:              r.ID,
		ShortTitle:      r.ShortTitle,
		Currency:        r.Currency,
		VATPayer:        r.VATPayer,
		PercentDiscount: r.PercentDiscount,
		ExternalID:      r.ExternalID,
		Email:           r.Email,
		InvoiceEmail:    r.InvoiceEmail,
		Phone:           r.Phone,
		DefaultURL:      r.DefaultURL,
	}
	if r.HasBillingAddress {
		b := models.BillingAddress(r.Billing)
		p.BillingAddress = &b
	}
	return p
}

func fromProject(p *models.Project) *projectRecord {
	r := &projectRecord{
		ID:              p.ID,
		ShortTitle:      p.ShortTitle,
		Currency:        models.NormalizeCurrency(p.Currency),
		VATPayer:        p.VATPayer,
		PercentDiscount: p.PercentDiscount,
		ExternalID:      p.ExternalID,
		Email:           p.Email,
		InvoiceEmail:    p.InvoiceEmail,
		Phone:           p.Phone,
		DefaultURL:      p.DefaultURL,
	}
	if p.BillingAddress != nil {
		r.HasBillingAddress = true
		r.Billing = billingAddress(*p.BillingAddress)
	}
	return r
}

func toInvoice(r *invoiceRecord) *models.Invoice {
	return &models.Invoice{
		ID:           r.ID,
		ProjectID:    r.ProjectID,
		ExternalID:   r.ExternalID,
		Code:         r.Code,
		VarSymbol:    r.VarSymbol,
		Created:      r.Created,
		DueDate:      r.DueDate,
		PaymentDate:  r.PaymentDate,
		Sent:         r.Sent,
		Price:        models.SumPrice(r.PriceWithTax, r.PriceTax, r.Currency),
		PaidAmount:   r.PaidAmount,
		PriceToPay:   r.PriceToPay,
		ExchangeRate: r.ExchangeRate,
		Proforma:     r.Proforma,
		Cancelled:    r.Cancelled,
		MustPay:      r.MustPay,
		ExternalURL:  r.ExternalURL,
	}
}

func fromInvoice(i *models.Invoice) *invoiceRecord {
	return &invoiceRecord{
		ID:           i.ID,
		ProjectID:    i.ProjectID,
		ExternalID:   i.ExternalID,
		Code:         i.Code,
		VarSymbol:    i.VarSymbol,
		Created:      i.Created,
		DueDate:      i.DueDate,
		PaymentDate:  i.PaymentDate,
		Sent:         i.Sent,
		PriceWithTax: i.Price.WithTax,
		PriceTax:     i.Price.Tax,
		Currency:     i.Price.Currency,
		PaidAmount:   i.PaidAmount,
		PriceToPay:   i.PriceToPay,
		ExchangeRate: i.ExchangeRate,
		Proforma:     i.Proforma,
		Cancelled:    i.Cancelled,
		MustPay:      i.MustPay,
		ExternalURL:  i.ExternalURL,
	}
}

func toTariff(r *tariffRecord) *models.Tariff {
	t := &models.Tariff{ID: r.ID, Name: r.Name}
	for _, p := range r.Prices {
		t.Prices = append(t.Prices, models.TariffPrice{
			Currency: p.Currency,
			Monthly:  p.Monthly,
			Annual:   p.Annual,
		})
	}
	return t
}
