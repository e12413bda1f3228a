package domain

import (
	"context"
	"errors"
	"time"

	"autoshop/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrTransactionExists is returned by stores when a transaction id is reused.
var ErrTransactionExists = errors.New("transaction already exists")

// RecordSource yields documents of a collection exactly as stored.
type RecordSource interface {
	ListRaw(ctx context.Context, collection string) ([]models.RawRecord, error)
}

type TransactionStore interface {
	InsertTransaction(ctx context.Context, tx *models.Transaction) error
}

// Store is what the API process needs from a document backend.
type Store interface {
	RecordSource
	TransactionStore
	Ping(ctx context.Context) error
	Close() error
}

// DraftRepository keeps in-progress transaction forms. A missing draft is
// (nil, nil).
type DraftRepository interface {
	GetDraft(ctx context.Context, draftID string) (*models.TransactionDraft, error)
	SetDraft(ctx context.Context, draft *models.TransactionDraft) error
	ClearDraft(ctx context.Context, draftID string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type SheetsWriter interface {
	ReplaceSalesSheet(ctx context.Context, report *models.SalesReport) error
}

// Notifier delivers the daily summary to shop managers.
type Notifier interface {
	SendDailySummary(ctx context.Context, summary *models.DashboardSummary, sales *models.SalesReport) error
}

type DashboardService interface {
	Summary(ctx context.Context) (*models.DashboardSummary, error)
}

type SalesService interface {
	Report(ctx context.Context, period string) (*models.SalesReport, error)
	ExportXLSX(ctx context.Context, period, dir string) (string, error)
}

type TransactionService interface {
	SaveDraft(ctx context.Context, draft *models.TransactionDraft) error
	GetDraft(ctx context.Context, draftID string) (*models.TransactionDraft, error)
	ClearDraft(ctx context.Context, draftID string) error
	Submit(ctx context.Context, draftID string) (*models.Transaction, error)
}

type DirectoryService interface {
	Customers(ctx context.Context, q models.DirectoryQuery) (*models.Page[models.Customer], error)
	Employees(ctx context.Context, q models.DirectoryQuery) (*models.Page[models.Employee], error)
}

// Backupper is implemented by stores that can snapshot themselves.
type Backupper interface {
	Backup(ctx context.Context, dir string, now time.Time) (string, error)
	PruneBackups(dir string, retentionDays int, now time.Time) (int, error)
}
