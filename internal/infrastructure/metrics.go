package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"deliveryboard/pkg/contracts/domain"
)

// BucketCounts reports the current bucket sizes of every record kind
type BucketCounts func() map[domain.RecordKind]map[domain.Bucket]int

// BoardMetrics holds the application instruments
type BoardMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Board metrics
	RefreshesTotal     metric.Int64Counter
	RefreshDuration    metric.Float64Histogram
	ConfirmationsTotal metric.Int64Counter
	WebSocketClients   metric.Int64UpDownCounter

	records      metric.Int64ObservableGauge
	registration metric.Registration
}

// NewBoardMetrics creates the instruments on meter. When counts is non-nil
// the board_records gauge observes it at every collection.
func NewBoardMetrics(meter metric.Meter, counts BucketCounts) (*BoardMetrics, error) {
	m := &BoardMetrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.RefreshesTotal, err = meter.Int64Counter(
		"board_refreshes_total",
		metric.WithDescription("Report refreshes by kind and outcome"),
	); err != nil {
		return nil, err
	}
	if m.RefreshDuration, err = meter.Float64Histogram(
		"board_refresh_duration_seconds",
		metric.WithDescription("Time to discover, parse and classify one report"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.ConfirmationsTotal, err = meter.Int64Counter(
		"board_confirmations_total",
		metric.WithDescription("Delivery confirmations recorded"),
	); err != nil {
		return nil, err
	}
	if m.WebSocketClients, err = meter.Int64UpDownCounter(
		"board_websocket_clients",
		metric.WithDescription("Connected dashboard clients"),
	); err != nil {
		return nil, err
	}

	if counts == nil {
		return m, nil
	}
	if m.records, err = meter.Int64ObservableGauge(
		"board_records",
		metric.WithDescription("Records currently published per kind and bucket"),
	); err != nil {
		return nil, err
	}
	m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		for kind, buckets := range counts() {
			for bucket, n := range buckets {
				o.ObserveInt64(m.records, int64(n), metric.WithAttributes(
					attribute.String("kind", string(kind)),
					attribute.String("bucket", string(bucket)),
				))
			}
		}
		return nil
	}, m.records)
	if err != nil {
		return nil, fmt.Errorf("registering records gauge: %w", err)
	}
	return m, nil
}

// RefreshCompleted records one refresh attempt
func (m *BoardMetrics) RefreshCompleted(ctx context.Context, kind domain.RecordKind, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("outcome", outcome),
	)
	m.RefreshesTotal.Add(ctx, 1, attrs)
	m.RefreshDuration.Record(ctx, duration.Seconds(), attrs)
}

// ConfirmationRecorded records one saved confirmation
func (m *BoardMetrics) ConfirmationRecorded(ctx context.Context, kind domain.RecordKind, arrived bool) {
	if m == nil {
		return
	}
	m.ConfirmationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.Bool("arrived", arrived),
	))
}

// ClientConnected tracks a websocket client joining (+1) or leaving (-1)
func (m *BoardMetrics) ClientConnected(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.WebSocketClients.Add(ctx, delta)
}

// Close unregisters the records gauge callback
func (m *BoardMetrics) Close() error {
	if m == nil || m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}
