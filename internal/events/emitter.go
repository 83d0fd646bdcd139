package events

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	obsmetrics "github.com/smallbiznis/bookkeeper/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type EmitterParams struct {
	fx.In

	Publisher Publisher
	Log       *zap.Logger
	Clock     clock.Clock
	Metrics   *obsmetrics.Metrics `optional:"true"`
}

// Emitter builds envelopes and hands them to the configured Publisher.
type Emitter struct {
	publisher Publisher
	log       *zap.Logger
	clock     clock.Clock
	metrics   *obsmetrics.Metrics
}

func NewEmitter(p EmitterParams) *Emitter {
	return &Emitter{
		publisher: p.Publisher,
		log:       p.Log.Named("events.emitter"),
		clock:     p.Clock,
		metrics:   p.Metrics,
	}
}

// Emit publishes one event. Call it only after commit; failures are logged
// and counted but never returned.
func (e *Emitter) Emit(ctx context.Context, eventType string, tenantID, aggregateID snowflake.ID, payload map[string]any) {
	if e == nil || e.publisher == nil {
		return
	}
	event := Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		TenantID:    tenantID.String(),
		AggregateID: aggregateID.String(),
		OccurredAt:  e.clock.Now().UTC(),
		Payload:     payload,
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.log.Warn("event publish failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", eventType),
			zap.String("tenant_id", event.TenantID),
			zap.Error(err),
		)
		e.metrics.RecordEvent(ctx, eventType, "failed")
		return
	}
	e.metrics.RecordEvent(ctx, eventType, "published")
}
