package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "autoshop"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "code"},
	)

	aggregationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Time spent building dashboard aggregates.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"view"},
	)

	recordsNormalized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_normalized_total",
			Help:      "Raw documents normalized by collection.",
		},
		[]string{"collection"},
	)

	transactionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_created_total",
			Help:      "Submitted transactions by payment method.",
		},
		[]string{"payment_method"},
	)

	salesAmount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_amount_total",
			Help:      "Sum of submitted transaction totals.",
		},
	)

	reportRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_job_runs_total",
			Help:      "Scheduled report runs by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			aggregationDuration,
			recordsNormalized,
			transactionsCreated,
			salesAmount,
			reportRuns,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string, code int) {
	httpRequests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
}

// ObserveAggregation records how long a dashboard view took since start.
func ObserveAggregation(view string, start time.Time) {
	aggregationDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
}

func AddNormalized(collection string, n int) {
	recordsNormalized.WithLabelValues(collection).Add(float64(n))
}

func IncTransaction(paymentMethod string, total float64) {
	transactionsCreated.WithLabelValues(paymentMethod).Inc()
	if total > 0 {
		salesAmount.Add(total)
	}
}

func IncReportRun(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	reportRuns.WithLabelValues(result).Inc()
}
