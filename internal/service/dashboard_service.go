package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"autoshop/internal/aggregate"
	"autoshop/internal/clock"
	"autoshop/internal/domain"
	"autoshop/internal/metrics"
	"autoshop/internal/models"

	"github.com/rs/zerolog"
)

type DashboardService struct {
	source     domain.RecordSource
	normalizer *aggregate.Normalizer
	clock      clock.Clock
	logger     *zerolog.Logger
}

func NewDashboardService(source domain.RecordSource, clk clock.Clock, logger *zerolog.Logger) *DashboardService {
	if clk == nil {
		clk = clock.System{}
	}
	return &DashboardService{
		source:     source,
		normalizer: aggregate.NewNormalizer(clk),
		clock:      clk,
		logger:     logger,
	}
}

// Summary builds the dashboard from the full booking history.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	start := time.Now()
	defer metrics.ObserveAggregation("dashboard", start)

	raws, err := s.source.ListRaw(ctx, models.CollectionBookings)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load bookings")
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	metrics.AddNormalized(models.CollectionBookings, len(raws))

	bookings := s.normalizer.NormalizeBookings(raws)
	return BuildSummary(bookings, s.clock.Now()), nil
}

// BuildSummary is Summary over already normalized bookings.
func BuildSummary(bookings []models.Booking, now time.Time) *models.DashboardSummary {
	month := aggregate.ThisMonth(now)
	split := aggregate.ClassifyCustomers(bookings, month)

	return &models.DashboardSummary{
		GeneratedAt:    now,
		StatusTotal:    aggregate.CountStatuses(bookings, nil),
		StatusToday:    aggregate.CountStatuses(bookings, aggregate.Today(now).Predicate()),
		StatusMonth:    aggregate.CountStatuses(bookings, month.Predicate()),
		Customers:      split,
		NewCount:       len(split.New),
		ReturningCount: len(split.Returning),
		RecentBookings: recentBookings(bookings, models.RecentBookingsLimit),
	}
}

// recentBookings returns the latest bookings by date, newest first.
func recentBookings(bookings []models.Booking, limit int) []models.Booking {
	sorted := append([]models.Booking(nil), bookings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.After(sorted[j].Date)
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	if sorted == nil {
		sorted = []models.Booking{}
	}
	return sorted
}
