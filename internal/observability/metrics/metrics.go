package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	journalEntries  metric.Int64Counter
	postingFailures metric.Int64Counter
	reconciliations metric.Int64Counter
	events          metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				log.Info("shutting down meter provider")
				return provider.Shutdown(ctx)
			},
		})
	}

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)
	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "bookkeeper"
	}
	meter := provider.Meter(name)

	journalEntries, err := meter.Int64Counter("bookkeeper_journal_entries_total",
		metric.WithDescription("Journal entries committed by entry type."))
	if err != nil {
		return nil, err
	}
	postingFailures, err := meter.Int64Counter("bookkeeper_posting_failures_total",
		metric.WithDescription("Rejected posting attempts by error code."))
	if err != nil {
		return nil, err
	}
	reconciliations, err := meter.Int64Counter("bookkeeper_reconciliations_total",
		metric.WithDescription("Reconciliations finished by final status."))
	if err != nil {
		return nil, err
	}
	events, err := meter.Int64Counter("bookkeeper_events_total",
		metric.WithDescription("Domain event publish attempts by result."))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		journalEntries:  journalEntries,
		postingFailures: postingFailures,
		reconciliations: reconciliations,
		events:          events,
	}, nil
}

// RecordJournalEntry increments committed journal entry counts.
func (m *Metrics) RecordJournalEntry(ctx context.Context, entryType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("entry_type", strings.TrimSpace(entryType)))
	m.journalEntries.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPostingFailure increments rejected posting counts.
func (m *Metrics) RecordPostingFailure(ctx context.Context, entryType, code string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("entry_type", strings.TrimSpace(entryType)),
		attribute.String("code", strings.TrimSpace(code)),
	)
	m.postingFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordReconciliation increments finished reconciliation counts.
func (m *Metrics) RecordReconciliation(ctx context.Context, status string, forced bool) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("status", strings.TrimSpace(status)),
		attribute.Bool("forced", forced),
	)
	m.reconciliations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordEvent increments event publish counts.
func (m *Metrics) RecordEvent(ctx context.Context, eventType, result string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("event_type", strings.TrimSpace(eventType)),
		attribute.String("result", strings.TrimSpace(result)),
	)
	m.events.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"entry_type": {},
	"code":       {},
	"status":     {},
	"forced":     {},
	"event_type": {},
	"result":     {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
