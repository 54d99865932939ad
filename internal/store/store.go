// Package store persists the CRM records the sync works with in SQLite via gorm.
package store

import (
	"context"
	"errors"
	"fmt"

	"crmsync/internal/logger"
	"crmsync/pkg/models"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the gorm-backed CRM store.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open connects to the SQLite database at dsn and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return New(db)
}

// New wraps an existing connection and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	err := db.AutoMigrate(
		&projectRecord{},
		&invoiceRecord{},
		&tariffRecord{},
		&tariffPriceRecord{},
		&tariffHistoryRecord{},
		&adminUserRecord{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db, log: logger.WithComponent("store")}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetProject loads a project with its billing address.
func (s *Store) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	var r projectRecord
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, notFound(err, "project", id)
	}
	return toProject(&r), nil
}

// SaveProject inserts or updates the project and sets its ID.
func (s *Store) SaveProject(ctx context.Context, p *models.Project) error {
	r := fromProject(p)
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return fmt.Errorf("save project %d: %w", p.ID, err)
	}
	p.ID = r.ID
	return nil
}

// GetInvoice loads an invoice together with its project.
func (s *Store) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	var r invoiceRecord
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, notFound(err, "invoice", id)
	}
	return s.withProject(ctx, toInvoice(&r))
}

// GetInvoiceByExternalID loads the invoice linked to a Fakturoid invoice.
func (s *Store) GetInvoiceByExternalID(ctx context.Context, externalID int64) (*models.Invoice, error) {
	var r invoiceRecord
	if err := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&r).Error; err != nil {
		return nil, notFound(err, "invoice with external id", externalID)
	}
	return s.withProject(ctx, toInvoice(&r))
}

// CreateInvoice inserts a new invoice and sets its ID.
func (s *Store) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	r := fromInvoice(invoice)
	r.ID = 0
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	invoice.ID = r.ID

	s.log.Debug().Int64("invoice_id", r.ID).Int64("external_id", r.ExternalID).Msg("Invoice stored")
	return nil
}

// SaveInvoice updates an existing invoice, or creates it when it has no ID yet.
func (s *Store) SaveInvoice(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == 0 {
		return s.CreateInvoice(ctx, invoice)
	}
	if err := s.db.WithContext(ctx).Save(fromInvoice(invoice)).Error; err != nil {
		return fmt.Errorf("save invoice %d: %w", invoice.ID, err)
	}
	return nil
}

// ListInvoices returns all invoices, oldest first.
func (s *Store) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	var records []invoiceRecord
	if err := s.db.WithContext(ctx).Order("created, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	invoices := make([]models.Invoice, 0, len(records))
	for i := range records {
		invoices = append(invoices, *toInvoice(&records[i]))
	}
	return invoices, nil
}

// SaveTariff stores the tariff and replaces its prices.
func (s *Store) SaveTariff(ctx context.Context, t *models.Tariff) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := &tariffRecord{ID: t.ID, Name: t.Name}
		if err := tx.Omit("Prices").Save(r).Error; err != nil {
			return fmt.Errorf("save tariff: %w", err)
		}
		if err := tx.Where("tariff_id = ?", r.ID).Delete(&tariffPriceRecord{}).Error; err != nil {
			return fmt.Errorf("clear tariff prices: %w", err)
		}
		for _, p := range t.Prices {
			price := &tariffPriceRecord{
				TariffID: r.ID,
				Currency: models.NormalizeCurrency(p.Currency),
				Monthly:  p.Monthly,
				Annual:   p.Annual,
			}
			if err := tx.Create(price).Error; err != nil {
				return fmt.Errorf("save tariff price: %w", err)
			}
		}
		t.ID = r.ID
		return nil
	})
}

// SaveTariffHistoryItem stores an item; its tariff must already be saved.
func (s *Store) SaveTariffHistoryItem(ctx context.Context, item *models.TariffHistoryItem) error {
	if item.Tariff == nil || item.Tariff.ID == 0 {
		return fmt.Errorf("tariff history item %q: tariff not saved", item.Title)
	}
	r := &tariffHistoryRecord{
		ID:               item.ID,
		InvoiceID:        item.InvoiceID,
		TariffID:         item.Tariff.ID,
		AccountingPeriod: string(item.AccountingPeriod),
		Title:            item.Title,
	}
	if err := s.db.WithContext(ctx).Omit("Tariff").Save(r).Error; err != nil {
		return fmt.Errorf("save tariff history item: %w", err)
	}
	item.ID = r.ID
	return nil
}

// FindTariffHistoryByInvoice returns the tariff history of an invoice with tariff prices preloaded, in insertion order.
func (s *Store) FindTariffHistoryByInvoice(ctx context.Context, invoiceID int64) ([]models.TariffHistoryItem, error) {
	var records []tariffHistoryRecord
	err := s.db.WithContext(ctx).
		Preload("Tariff.Prices").
		Where("invoice_id = ?", invoiceID).
		Order("id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("find tariff history of invoice %d: %w", invoiceID, err)
	}

	items := make([]models.TariffHistoryItem, 0, len(records))
	for _, r := range records {
		item := models.TariffHistoryItem{
			ID:               r.ID,
			InvoiceID:        r.InvoiceID,
			AccountingPeriod: models.AccountingPeriod(r.AccountingPeriod),
			Title:            r.Title,
		}
		if r.Tariff != nil {
			item.Tariff = toTariff(r.Tariff)
		}
		items = append(items, item)
	}
	return items, nil
}

// SaveAdminUser inserts or updates an admin user and sets its ID.
func (s *Store) SaveAdminUser(ctx context.Context, u *models.AdminUser) error {
	r := &adminUserRecord{ID: u.ID, ProjectID: u.ProjectID, Email: u.Email}
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return fmt.Errorf("save admin user: %w", err)
	}
	u.ID = r.ID
	return nil
}

// FindAdminUserByProjectID returns nil when the project has no admin user.
func (s *Store) FindAdminUserByProjectID(ctx context.Context, projectID int64) (*models.AdminUser, error) {
	var r adminUserRecord
	err := s.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id").First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find admin user of project %d: %w", projectID, err)
	}
	return &models.AdminUser{ID: r.ID, ProjectID: r.ProjectID, Email: r.Email}, nil
}

func (s *Store) withProject(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	project, err := s.GetProject(ctx, invoice.ProjectID)
	if err != nil {
		return nil, err
	}
	invoice.Project = project
	return invoice, nil
}

func notFound(err error, what string, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("load %s %d: %w", what, id, err)
}
