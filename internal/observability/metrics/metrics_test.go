package metrics

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("tenant_id", "123"),
		attribute.String("entry_type", "INV"),
		attribute.String("entry_number", "INV-000001"),
		attribute.String("code", "NOT_BALANCED"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "entry_type" || attrs[1].Key != "code" {
		t.Fatalf("unexpected retained attributes: %v", attrs)
	}
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "bookkeeper"}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("expected metrics, got %v", err)
	}
	ctx := context.Background()
	m.RecordJournalEntry(ctx, "INV")
	m.RecordPostingFailure(ctx, "RCT", "OVERPAYMENT")
	m.RecordReconciliation(ctx, "completed", false)
	m.RecordEvent(ctx, "invoice.posted", "ok")

	var nilMetrics *Metrics
	nilMetrics.RecordJournalEntry(ctx, "INV")
}
