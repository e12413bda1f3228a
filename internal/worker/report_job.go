package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autoshop/internal/clock"
	"autoshop/internal/domain"
	"autoshop/internal/events"
	"autoshop/internal/export"
	"autoshop/internal/metrics"

	"github.com/rs/zerolog"
)

// DailyReportPeriod is the sales period of the scheduled report.
const DailyReportPeriod = "daily"

// ReportJob builds the end of day report: dashboard summary plus the daily
// sales breakdown. Workbook, Sheets and Telegram outputs are each optional,
// and a failing one does not stop the others.
type ReportJob struct {
	dashboard   domain.DashboardService
	sales       domain.SalesService
	sheets      domain.SheetsWriter
	notifier    domain.Notifier
	eventBus    domain.EventPublisher
	exportDir   string
	retryPolicy RetryPolicy
	clock       clock.Clock
	logger      *zerolog.Logger
}

type ReportJobDeps struct {
	Dashboard domain.DashboardService
	Sales     domain.SalesService
	Sheets    domain.SheetsWriter
	Notifier  domain.Notifier
	EventBus  domain.EventPublisher
	ExportDir string
	Retry     RetryPolicy
	Clock     clock.Clock
	Logger    *zerolog.Logger
}

func NewReportJob(deps ReportJobDeps) *ReportJob {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Logger == nil {
		nop := zerolog.Nop()
		deps.Logger = &nop
	}
	if deps.Retry.MaxRetries == 0 {
		deps.Retry.MaxRetries = 3
	}
	return &ReportJob{
		dashboard:   deps.Dashboard,
		sales:       deps.Sales,
		sheets:      deps.Sheets,
		notifier:    deps.Notifier,
		eventBus:    deps.EventBus,
		exportDir:   deps.ExportDir,
		retryPolicy: deps.Retry,
		clock:       deps.Clock,
		logger:      deps.Logger,
	}
}

// Run produces one report. The returned error joins every failed output.
func (j *ReportJob) Run(ctx context.Context) (err error) {
	began := time.Now()
	start := j.clock.Now()
	defer func() { metrics.IncReportRun(err == nil) }()

	summary, err := j.dashboard.Summary(ctx)
	if err != nil {
		return fmt.Errorf("build summary: %w", err)
	}
	report, err := j.sales.Report(ctx, DailyReportPeriod)
	if err != nil {
		return fmt.Errorf("build sales report: %w", err)
	}

	var errs []error
	payload := events.ReportEventPayload{
		Period:      report.Period,
		Total:       report.Total,
		GeneratedAt: start,
	}

	if j.exportDir != "" {
		// same report the sheet and the message get, not a second read
		path, exportErr := export.WriteSalesReport(report, j.exportDir, start)
		if exportErr != nil {
			errs = append(errs, fmt.Errorf("export workbook: %w", exportErr))
		} else {
			payload.File = path
		}
	}

	if j.sheets != nil {
		syncErr := j.retryPolicy.Do(ctx, func(ctx context.Context) error {
			return j.sheets.ReplaceSalesSheet(ctx, report)
		})
		if syncErr != nil {
			errs = append(errs, fmt.Errorf("sync sheets: %w", syncErr))
		} else {
			payload.SheetSynced = true
		}
	}

	if j.notifier != nil {
		if notifyErr := j.notifier.SendDailySummary(ctx, summary, report); notifyErr != nil {
			errs = append(errs, fmt.Errorf("notify managers: %w", notifyErr))
		} else {
			payload.Notified = true
		}
	}

	if j.eventBus != nil {
		if pubErr := j.eventBus.PublishJSON(events.EventReportGenerated, payload); pubErr != nil {
			j.logger.Error().Err(pubErr).Msg("failed to publish report event")
		}
	}

	err = errors.Join(errs...)
	logEvent := j.logger.Info()
	if err != nil {
		logEvent = j.logger.Error().Err(err)
	}
	logEvent.
		Str("period", report.Period).
		Float64("total", report.Total).
		Str("file", payload.File).
		Bool("sheet_synced", payload.SheetSynced).
		Bool("notified", payload.Notified).
		Dur("took", time.Since(began)).
		Msg("daily report finished")
	return err
}
