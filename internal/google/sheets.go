package google

import (
	"context"
	"errors"
	"fmt"
	"os"

	"autoshop/internal/events"
	"autoshop/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	SalesSheet        = "Sales"
	TransactionsSheet = "Transactions"
)

type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
}

func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsService, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}

	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return NewWithService(srv, spreadsheetID), nil
}

// NewWithService wraps an already configured client.
func NewWithService(srv *sheets.Service, spreadsheetID string) *SheetsService {
	return &SheetsService{service: srv, spreadsheetID: spreadsheetID}
}

// TestConnection проверяет подключение к таблице
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, SalesSheet+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// ReplaceSalesSheet полностью перезаписывает лист продаж
func (s *SheetsService) ReplaceSalesSheet(ctx context.Context, report *models.SalesReport) error {
	if report == nil {
		return errors.New("sales report is nil")
	}

	_, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, SalesSheet+"!A:Z", &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear sales sheet: %w", err)
	}

	valueRange := &sheets.ValueRange{Values: salesRowValues(report)}
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, SalesSheet+"!A1", valueRange).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update sales sheet: %w", err)
	}
	return nil
}

// AppendTransaction adds one row to the transactions log sheet.
func (s *SheetsService) AppendTransaction(ctx context.Context, tx events.TransactionEventPayload) error {
	if tx.TransactionID == "" {
		return errors.New("transaction id is required")
	}
	valueRange := &sheets.ValueRange{Values: [][]interface{}{transactionRowValues(tx)}}
	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, TransactionsSheet+"!A:A", valueRange).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

func salesRowValues(report *models.SalesReport) [][]interface{} {
	values := make([][]interface{}, 0, len(report.Buckets)+4)
	values = append(values,
		[]interface{}{"Period", report.Period, report.GeneratedAt.Format("2006-01-02 15:04")},
		[]interface{}{"Slot", "Amount"},
	)
	for _, b := range report.Buckets {
		values = append(values, []interface{}{b.Label, b.Amount})
	}
	values = append(values,
		[]interface{}{"Total", report.Total},
		[]interface{}{"Transactions", report.Count},
	)
	return values
}

func transactionRowValues(tx events.TransactionEventPayload) []interface{} {
	return []interface{}{
		tx.Reference,
		tx.TransactionID,
		tx.BookingID,
		tx.CustomerID,
		tx.PaymentMethod,
		tx.TotalPrice,
		tx.ServiceCount,
		tx.CreatedAt.Format("2006-01-02 15:04"),
	}
}
