package memo

import (
	"context"

	"github.com/on-the-ground/memo_ive_go/store"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/on-the-ground/memo_ive_go/memo"

// metrics records per-operation cache instruments.
type metrics struct {
	hits         metric.Int64Counter
	misses       metric.Int64Counter
	errors       metric.Int64Counter
	durationHist metric.Float64Histogram
	attrs        metric.MeasurementOption
}

func newMetrics(meter metric.Meter, name string) (*metrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(instrumentationName)
	}

	hits, err := meter.Int64Counter(
		"memo.calls.hits",
		metric.WithDescription("Calls answered from a stored entry"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		"memo.calls.misses",
		metric.WithDescription("Calls that ran the underlying operation"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errs, err := meter.Int64Counter(
		"memo.calls.errors",
		metric.WithDescription("Calls that failed in the operation or while copying a hit"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"memo.compute.duration_ms",
		metric.WithDescription("Duration of stored computations in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{
		hits:         hits,
		misses:       misses,
		errors:       errs,
		durationHist: durationHist,
		attrs:        metric.WithAttributes(attribute.String("memo.operation", name)),
	}, nil
}

// hooks exposes the instruments as store hooks.
func (m *metrics) hooks() store.Hooks {
	ctx := context.Background()
	return store.Hooks{
		OnHit: func(store.Event) error {
			m.hits.Add(ctx, 1, m.attrs)
			return nil
		},
		OnMiss: func(store.Event) error {
			m.misses.Add(ctx, 1, m.attrs)
			return nil
		},
		OnStore: func(ev store.Event) error {
			m.durationHist.Record(ctx, float64(ev.Span.Duration().Microseconds())/1000, m.attrs)
			return nil
		},
		OnError: func(store.Event) error {
			m.errors.Add(ctx, 1, m.attrs)
			return nil
		},
	}
}
