package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricAnalyzerRuns     = "codelens.analyzer.runs.total"
	metricAnalyzerDuration = "codelens.analyzer.duration.seconds"
	metricReportsTotal     = "codelens.reports.total"

	attrAnalyzer = "analyzer"
	attrStatus   = "status"
)

// StatusOK labels a run that produced findings.
const StatusOK = "ok"

// Analyzer runs are short; buckets cover 1ms to the style tool timeout range.
var durationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// PipelineMetrics holds the instruments recorded while building reports.
type PipelineMetrics struct {
	runs     metric.Int64Counter
	duration metric.Float64Histogram
	reports  metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments on mt.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	runs, err := mt.Int64Counter(metricAnalyzerRuns,
		metric.WithDescription("Analyzer runs by outcome"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricAnalyzerRuns, err)
	}

	duration, err := mt.Float64Histogram(metricAnalyzerDuration,
		metric.WithDescription("Analyzer run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricAnalyzerDuration, err)
	}

	reports, err := mt.Int64Counter(metricReportsTotal,
		metric.WithDescription("Reports built by outcome"),
		metric.WithUnit("{report}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricReportsTotal, err)
	}

	return &PipelineMetrics{runs: runs, duration: duration, reports: reports}, nil
}

// RecordRun records one analyzer run. status is StatusOK or a failure reason.
func (m *PipelineMetrics) RecordRun(ctx context.Context, analyzer, status string, d time.Duration) {
	m.runs.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrAnalyzer, analyzer),
		attribute.String(attrStatus, status),
	))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String(attrAnalyzer, analyzer)))
}

// RecordReport records one finished Build call.
func (m *PipelineMetrics) RecordReport(ctx context.Context, status string) {
	m.reports.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
}
