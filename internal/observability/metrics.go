package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	exportsParsedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "healthreport",
		Subsystem: "export",
		Name:      "parsed_total",
		Help:      "Number of export archives parsed successfully.",
	})

	elementsParsedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthreport",
		Subsystem: "export",
		Name:      "elements_parsed_total",
		Help:      "Number of export elements materialised, labeled by element.",
	}, []string{"element"})

	buildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "healthreport",
		Subsystem: "report",
		Name:      "build_duration_seconds",
		Help:      "Time spent loading an export and assembling its report.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	buildFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthreport",
		Subsystem: "report",
		Name:      "build_failures_total",
		Help:      "Number of report builds that failed, labeled by reason.",
	}, []string{"reason"})

	lastReportGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "healthreport",
		Subsystem: "report",
		Name:      "last_report_timestamp_seconds",
		Help:      "Unix timestamp of the most recent report generated.",
	})
)

func init() {
	prometheus.MustRegister(exportsParsedCounter, elementsParsedCounter, buildDuration, buildFailures, lastReportGauge)
}

// RecordExportParsed counts one parsed export and its elements.
func RecordExportParsed(records, workouts int) {
	exportsParsedCounter.Inc()
	elementsParsedCounter.WithLabelValues("Record").Add(float64(records))
	elementsParsedCounter.WithLabelValues("Workout").Add(float64(workouts))
}

// ObserveBuild records the duration of a report build.
func ObserveBuild(d time.Duration) {
	buildDuration.Observe(d.Seconds())
}

// RecordBuildFailure increments the failure counter for reason.
func RecordBuildFailure(reason string) {
	buildFailures.WithLabelValues(reason).Inc()
}

// RecordReportGenerated updates the report watermark gauge.
func RecordReportGenerated(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastReportGauge.Set(float64(ts.Unix()))
}
