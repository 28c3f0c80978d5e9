package recsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/recsearch/internal/domain"
)

// Operation outcomes used as the status label.
const (
	statusOK       = "ok"
	statusRejected = "rejected"
	statusNotFound = "not_found"
	statusCanceled = "canceled"
	statusError    = "error"
)

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	rows       prometheus.Histogram
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recsearch",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK operations by type and outcome.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "recsearch",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		rows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "recsearch",
			Subsystem: "sdk",
			Name:      "search_rows",
			Help:      "Rows returned per search page.",
			Buckets:   []float64{0, 1, 10, 50, 100, 500, 1000},
		}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.rows); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or points it at the collector already
// registered under the same descriptor.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("recsearch: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("recsearch: metric already registered with incompatible type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// outcome classifies err for the status label. Caller mistakes and
// missing records are not failures of the engine.
func outcome(err error) string {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, context.Canceled):
		return statusCanceled
	case errors.Is(err, domain.ErrNotFound):
		return statusNotFound
	case errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrUnresolvedTenant):
		return statusRejected
	default:
		return statusError
	}
}

// observer logs and counts SDK operations. A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

func (o *observer) observe(op string, start time.Time, err error, attrs ...slog.Attr) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	status := outcome(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}
	if o.logger == nil {
		return
	}

	attrs = append(attrs,
		slog.String("op", op),
		slog.String("status", status),
		slog.Duration("duration", dur),
	)
	level := slog.LevelDebug
	if status == statusError {
		level = slog.LevelWarn
		attrs = append(attrs, slog.Any("error", err))
	}
	o.logger.LogAttrs(context.Background(), level, "recsearch operation", attrs...)
}

// observeRows records the size of a returned search page.
func (o *observer) observeRows(n int) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.rows.Observe(float64(n))
}
