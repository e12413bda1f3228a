package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autoshop/internal/aggregate"
	"autoshop/internal/clock"
	"autoshop/internal/domain"
	"autoshop/internal/export"
	"autoshop/internal/metrics"
	"autoshop/internal/models"

	"github.com/rs/zerolog"
)

// ErrInvalidPeriod is returned for a period outside daily/weekly/monthly/yearly.
var ErrInvalidPeriod = errors.New("invalid period")

type SalesService struct {
	source     domain.RecordSource
	normalizer *aggregate.Normalizer
	clock      clock.Clock
	logger     *zerolog.Logger
}

func NewSalesService(source domain.RecordSource, clk clock.Clock, logger *zerolog.Logger) *SalesService {
	if clk == nil {
		clk = clock.System{}
	}
	return &SalesService{
		source:     source,
		normalizer: aggregate.NewNormalizer(clk),
		clock:      clk,
		logger:     logger,
	}
}

func (s *SalesService) Report(ctx context.Context, period string) (*models.SalesReport, error) {
	p, err := aggregate.ParsePeriod(period)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeriod, err)
	}

	start := time.Now()
	defer metrics.ObserveAggregation("sales", start)

	raws, err := s.source.ListRaw(ctx, models.CollectionTransactions)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load transactions")
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	metrics.AddNormalized(models.CollectionTransactions, len(raws))

	txs := s.normalizer.NormalizeTransactions(raws)
	return BuildSalesReport(txs, p, s.clock.Now()), nil
}

// BuildSalesReport buckets transactions of the period containing now.
func BuildSalesReport(txs []models.Transaction, p aggregate.Period, now time.Time) *models.SalesReport {
	buckets := aggregate.BucketTotals(aggregate.TransactionRecords(txs), p, now)

	win := aggregate.WindowFor(p, now)
	count := 0
	for i := range txs {
		if win.Contains(txs[i].CreatedAt) {
			count++
		}
	}

	var total float64
	for _, b := range buckets {
		total += b.Amount
	}

	return &models.SalesReport{
		Period:      string(p),
		GeneratedAt: now,
		Buckets:     buckets,
		Total:       total,
		Count:       count,
	}
}

// ExportXLSX writes the report of period into dir and returns the file path.
func (s *SalesService) ExportXLSX(ctx context.Context, period, dir string) (string, error) {
	report, err := s.Report(ctx, period)
	if err != nil {
		return "", err
	}
	path, err := export.WriteSalesReport(report, dir, s.clock.Now())
	if err != nil {
		s.logger.Error().Err(err).Str("period", report.Period).Msg("failed to export sales report")
		return "", err
	}
	s.logger.Info().Str("file_path", path).Str("period", report.Period).Msg("Excel file created")
	return path, nil
}
