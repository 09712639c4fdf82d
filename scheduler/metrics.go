package scheduler

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/qroute-team/qroute-engine/core"
)

var meter = otel.Meter("qroute.scheduler")

var (
	compileTotal    metric.Int64Counter
	compileDuration metric.Float64Histogram
	queueWait       metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// setupMetrics registers the scheduler instruments. Safe to call from
// every scheduler Setup; only the first call does work.
func setupMetrics() error {
	metricsOnce.Do(func() {
		var err error
		compileTotal, err = meter.Int64Counter(
			"compile_jobs_total",
			metric.WithDescription("Total number of compile jobs processed by the workers"),
		)
		if err != nil {
			metricsErr = err
			return
		}
		compileDuration, err = meter.Float64Histogram(
			"compile_duration_seconds",
			metric.WithDescription("Duration of the compile stage of a job"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
		queueWait, err = meter.Float64Histogram(
			"compile_queue_wait_seconds",
			metric.WithDescription("Time a job spent in the compile queue before a worker picked it up"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordQueueWait(d time.Duration) {
	if queueWait == nil {
		return
	}
	queueWait.Record(context.Background(), d.Seconds())
}

func recordCompile(d time.Duration, st core.Status) {
	if compileTotal == nil || compileDuration == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", st.String()))
	compileTotal.Add(context.Background(), 1, attrs)
	compileDuration.Record(context.Background(), d.Seconds(), attrs)
}
