package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	metricPrefix = "aquaculture_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	readingsAppended *prometheus.CounterVec
	ingestErrors     *prometheus.CounterVec

	alertsCreated    *prometheus.CounterVec
	alertsSuppressed *prometheus.CounterVec
	alertEventsTotal *prometheus.CounterVec
	notifyFailures   *prometheus.CounterVec
	alertsTotal      prometheus.Gauge
	alertsUnresolved *prometheus.GaugeVec

	timeSeriesTotal   *prometheus.CounterVec
	timeSeriesLatency *prometheus.HistogramVec
)

// Init registers metrics with the default registry. Safe to call more than once.
func Init(logger *zap.Logger) {
	registerOnce.Do(func() {
		readingsAppended = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "readings_appended_total",
				Help: "Total readings appended by variant",
			},
			[]string{"variant"},
		)
		ingestErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_errors_total",
				Help: "Total rejected readings by reason",
			},
			[]string{"reason"},
		)

		alertsCreated = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alerts_created_total",
				Help: "Total alerts created by rule",
			},
			[]string{"rule"},
		)
		alertsSuppressed = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alerts_suppressed_total",
				Help: "Total breaches suppressed by the dedup window, by rule",
			},
			[]string{"rule"},
		)
		alertEventsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alert_events_total",
				Help: "Total alert lifecycle events by type",
			},
			[]string{"event"},
		)
		notifyFailures = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alert_notification_failures_total",
				Help: "Total failed alert notifications by event type",
			},
			[]string{"event"},
		)
		alertsTotal = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "alerts",
				Help: "Alerts currently held in the store",
			},
		)
		alertsUnresolved = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "alerts_unresolved",
				Help: "Unresolved alerts by line",
			},
			[]string{"line"},
		)

		timeSeriesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "timeseries_queries_total",
				Help: "Total time-series queries by interval and result",
			},
			[]string{"interval", "result"},
		)
		timeSeriesLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "timeseries_query_latency_seconds",
				Help:    "Time-series query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"interval"},
		)

		prometheus.MustRegister(
			readingsAppended,
			ingestErrors,
			alertsCreated,
			alertsSuppressed,
			alertEventsTotal,
			notifyFailures,
			alertsTotal,
			alertsUnresolved,
			timeSeriesTotal,
			timeSeriesLatency,
		)
		if logger != nil {
			logger.Debug("metrics registered", zap.String("prefix", metricPrefix))
		}
	})
}

// IncReadingAppended counts a stored reading.
func IncReadingAppended(variant string) {
	if variant == "" {
		variant = "unknown"
	}
	if readingsAppended != nil {
		readingsAppended.WithLabelValues(variant).Inc()
	}
}

// IncIngestError counts a rejected reading.
func IncIngestError(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if ingestErrors != nil {
		ingestErrors.WithLabelValues(reason).Inc()
	}
}

// IncAlertCreated counts a new alert for a rule.
func IncAlertCreated(ruleID string) {
	if alertsCreated != nil {
		alertsCreated.WithLabelValues(ruleID).Inc()
	}
}

// IncAlertSuppressed counts a breach swallowed by dedup.
func IncAlertSuppressed(ruleID string) {
	if alertsSuppressed != nil {
		alertsSuppressed.WithLabelValues(ruleID).Inc()
	}
}

// IncAlertEvent increments alert lifecycle counters.
func IncAlertEvent(event string) {
	if event == "" {
		event = "unknown"
	}
	if alertEventsTotal != nil {
		alertEventsTotal.WithLabelValues(event).Inc()
	}
}

// IncNotificationFailure counts an alert notification that failed to deliver.
func IncNotificationFailure(event string) {
	if event == "" {
		event = "unknown"
	}
	if notifyFailures != nil {
		notifyFailures.WithLabelValues(event).Inc()
	}
}

// SetAlertGauges replaces the alert gauges with a fresh snapshot.
func SetAlertGauges(total int, unresolvedByLine map[string]int) {
	if alertsTotal != nil {
		alertsTotal.Set(float64(total))
	}
	if alertsUnresolved == nil {
		return
	}
	alertsUnresolved.Reset()
	for line, count := range unresolvedByLine {
		alertsUnresolved.WithLabelValues(line).Set(float64(count))
	}
}

// ObserveTimeSeries records a time-series query.
func ObserveTimeSeries(interval, result string, duration time.Duration) {
	if interval == "" {
		interval = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if timeSeriesTotal != nil {
		timeSeriesTotal.WithLabelValues(interval, result).Inc()
	}
	if timeSeriesLatency != nil {
		timeSeriesLatency.WithLabelValues(interval).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
