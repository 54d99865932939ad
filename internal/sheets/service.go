package sheets

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"crmsync/internal/logger"
	"crmsync/pkg/models"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	dateLayout   = "02.01.2006"
	columnCount  = 17
	columnsRange = "A:Q"
)

var headers = []interface{}{
	"Fakturoid ID", "Číslo", "VS", "Projekt", "Vystaveno",
	"Splatnost", "Uhrazeno dne", "Měna", "Bez DPH", "DPH",
	"Celkem", "Uhrazeno", "K úhradě", "Proforma", "Stornováno",
	"Povinná", "Odkaz",
}

// Service handles Google Sheets operations
type Service struct {
	sheetsService *sheets.Service
	spreadsheetID string
	log           zerolog.Logger
}

// InvoiceRow represents a row of the invoice ledger
type InvoiceRow struct {
	ExternalID  int64
	Code        string
	VarSymbol   string
	ProjectID   int64
	Issued      string
	Due         string
	PaidOn      string
	Currency    string
	WithoutTax  float64
	Tax         float64
	Total       float64
	PaidAmount  float64
	PriceToPay  float64
	Proforma    bool
	Cancelled   bool
	MustPay     bool
	ExternalURL string
}

// NewSheetsService creates a new Google Sheets service
func NewSheetsService(ctx context.Context, sheetURL string) (*Service, error) {
	const op = "NewSheetsService"

	log := logger.WithComponent("sheets")

	spreadsheetID, err := extractSpreadsheetID(sheetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to extract spreadsheet ID: %w", op, err)
	}

	log.Debug().Str("spreadsheet_id", spreadsheetID).Msg("Extracted spreadsheet ID")

	var creds []byte
	if credsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credsFile != "" {
		creds, err = os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read credentials file: %w", op, err)
		}
	} else if credsJSON := os.Getenv("GOOGLE_CREDENTIALS"); credsJSON != "" {
		creds = []byte(credsJSON)
	} else {
		return nil, fmt.Errorf("%s: neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is set", op)
	}

	config, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse credentials: %w", op, err)
	}

	svc, err := newService(ctx, spreadsheetID, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return svc, nil
}

func newService(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Service, error) {
	sheetsService, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Service{
		sheetsService: sheetsService,
		spreadsheetID: spreadsheetID,
		log:           logger.WithComponent("sheets"),
	}, nil
}

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// extractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL
func extractSpreadsheetID(url string) (string, error) {
	matches := spreadsheetIDPattern.FindStringSubmatch(url)
	if len(matches) < 2 {
		return "", fmt.Errorf("invalid Google Sheets URL format")
	}
	return matches[1], nil
}

// WriteInvoices appends the invoices that are not yet in the sheet and
// returns how many rows were written. Invoices without a Fakturoid ID are skipped.
func (s *Service) WriteInvoices(ctx context.Context, invoices []models.Invoice, sheetName string) (int, error) {
	const op = "WriteInvoices"

	if err := s.ensureSheetWithHeaders(ctx, sheetName); err != nil {
		return 0, fmt.Errorf("%s: failed to ensure sheet exists: %w", op, err)
	}

	existing, err := s.ReadRange(ctx, sheetName+"!A2:A")
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	rows := newRows(invoices, exportedIDs(existing))
	if len(rows) == 0 {
		s.log.Info().Str("sheet", sheetName).Msg("Sheet is up to date")
		return 0, nil
	}

	s.log.Info().
		Str("sheet", sheetName).
		Int("rows", len(rows)).
		Msg("Writing invoices to Google Sheet")

	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		values = append(values, rowToValues(row))
	}

	_, err = s.sheetsService.Spreadsheets.Values.Append(
		s.spreadsheetID,
		sheetName+"!"+columnsRange,
		&sheets.ValueRange{Values: values},
	).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to append values to sheet: %w", op, err)
	}

	s.log.Info().
		Int("rows_written", len(values)).
		Msg("Successfully wrote invoices to Google Sheet")

	return len(values), nil
}

// exportedIDs collects the Fakturoid IDs found in the first column.
func exportedIDs(values [][]interface{}) map[int64]bool {
	ids := make(map[int64]bool, len(values))
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		id, err := strconv.ParseInt(fmt.Sprint(row[0]), 10, 64)
		if err == nil {
			ids[id] = true
		}
	}
	return ids
}

func newRows(invoices []models.Invoice, exported map[int64]bool) []InvoiceRow {
	var rows []InvoiceRow
	for i := range invoices {
		inv := &invoices[i]
		if inv.ExternalID == 0 || exported[inv.ExternalID] {
			continue
		}
		rows = append(rows, invoiceToRow(inv))
	}
	return rows
}

func invoiceToRow(inv *models.Invoice) InvoiceRow {
	row := InvoiceRow{
		ExternalID:  inv.ExternalID,
		Code:        inv.Code,
		VarSymbol:   inv.VarSymbol,
		ProjectID:   inv.ProjectID,
		Issued:      formatDate(inv.Created),
		Due:         formatDate(inv.DueDate),
		Currency:    inv.Price.Currency,
		WithoutTax:  inv.Price.WithoutTax().InexactFloat64(),
		Tax:         inv.Price.Tax.InexactFloat64(),
		Total:       inv.Price.WithTax.InexactFloat64(),
		PaidAmount:  inv.PaidAmount.InexactFloat64(),
		PriceToPay:  inv.PriceToPay.InexactFloat64(),
		Proforma:    inv.Proforma,
		Cancelled:   inv.Cancelled,
		MustPay:     inv.MustPay,
		ExternalURL: inv.ExternalURL,
	}
	if inv.PaymentDate != nil {
		row.PaidOn = formatDate(*inv.PaymentDate)
	}
	return row
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// rowToValues converts InvoiceRow to interface{} slice for Google Sheets
func rowToValues(row InvoiceRow) []interface{} {
	return []interface{}{
		row.ExternalID,  // A: Fakturoid ID
		row.Code,        // B: Číslo
		row.VarSymbol,   // C: VS
		row.ProjectID,   // D: Projekt
		row.Issued,      // E: Vystaveno
		row.Due,         // F: Splatnost
		row.PaidOn,      // G: Uhrazeno dne
		row.Currency,    // H: Měna
		row.WithoutTax,  // I: Bez DPH
		row.Tax,         // J: DPH
		row.Total,       // K: Celkem
		row.PaidAmount,  // L: Uhrazeno
		row.PriceToPay,  // M: K úhradě
		row.Proforma,    // N: Proforma
		row.Cancelled,   // O: Stornováno
		row.MustPay,     // P: Povinná
		row.ExternalURL, // Q: Odkaz
	}
}

// ensureSheetWithHeaders ensures the sheet exists and has proper headers
func (s *Service) ensureSheetWithHeaders(ctx context.Context, sheetName string) error {
	const op = "ensureSheetWithHeaders"

	spreadsheet, err := s.sheetsService.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to get spreadsheet: %w", op, err)
	}

	var sheetExists bool
	var sheetID int64
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == sheetName {
			sheetExists = true
			sheetID = sheet.Properties.SheetId
			break
		}
	}

	if !sheetExists {
		s.log.Info().Str("sheet", sheetName).Msg("Creating new sheet")

		batchUpdateReq := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{
				{AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: sheetName},
				}},
			},
		}

		resp, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID, batchUpdateReq).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("%s: failed to create sheet: %w", op, err)
		}
		sheetID = resp.Replies[0].AddSheet.Properties.SheetId
	}

	headerRange := fmt.Sprintf("%s!A1:Q1", sheetName)
	resp, err := s.sheetsService.Spreadsheets.Values.Get(s.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to get headers: %w", op, err)
	}

	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		s.log.Info().Str("sheet", sheetName).Msg("Adding headers to sheet")

		_, err = s.sheetsService.Spreadsheets.Values.Update(
			s.spreadsheetID,
			headerRange,
			&sheets.ValueRange{Values: [][]interface{}{headers}},
		).ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("%s: failed to add headers: %w", op, err)
		}

		if err := s.formatHeaders(ctx, sheetID); err != nil {
			s.log.Warn().Err(err).Msg("Failed to format headers, continuing anyway")
		}
	}

	return nil
}

// formatHeaders makes the header row bold and auto-sizes the columns
func (s *Service) formatHeaders(ctx context.Context, sheetID int64) error {
	const op = "formatHeaders"

	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   columnCount,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat:      &sheets.TextFormat{Bold: true},
						BackgroundColor: &sheets.Color{Red: 0.9, Green: 0.9, Blue: 0.9},
					},
				},
				Fields: "userEnteredFormat(textFormat,backgroundColor)",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   columnCount,
				},
			},
		},
	}

	_, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to format headers: %w", op, err)
	}

	return nil
}

// ReadRange reads values from a specified range in the spreadsheet
func (s *Service) ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error) {
	const op = "ReadRange"

	s.log.Debug().
		Str("range", rangeSpec).
		Msg("Reading range from spreadsheet")

	resp, err := s.sheetsService.Spreadsheets.Values.Get(s.spreadsheetID, rangeSpec).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read range %s: %w", op, rangeSpec, err)
	}

	return resp.Values, nil
}
