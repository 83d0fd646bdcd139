package events

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher writes events to the log only. It is the default driver for
// local runs.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log.Named("events.log")}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.log.Info("domain event",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
		zap.String("tenant_id", event.TenantID),
		zap.String("aggregate_id", event.AggregateID),
		zap.Any("payload", event.Payload),
	)
	return nil
}
