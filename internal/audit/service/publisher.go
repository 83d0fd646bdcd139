package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/bookkeeper/internal/audit/domain"
	"github.com/smallbiznis/bookkeeper/internal/events"
	"go.uber.org/zap"
)

// auditingPublisher writes an audit row for each event before handing it
// to the wrapped publisher. A failed audit write does not stop delivery.
type auditingPublisher struct {
	next  events.Publisher
	audit auditdomain.Service
	log   *zap.Logger
}

// DecoratePublisher wraps the configured event publisher with the audit
// trail.
func DecoratePublisher(next events.Publisher, audit auditdomain.Service, log *zap.Logger) events.Publisher {
	return &auditingPublisher{
		next:  next,
		audit: audit,
		log:   log.Named("audit.publisher"),
	}
}

func (p *auditingPublisher) Publish(ctx context.Context, event events.Event) error {
	if err := p.audit.Record(ctx, entryFromEvent(event)); err != nil {
		p.log.Warn("audit record skipped",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.Error(err),
		)
	}
	if p.next == nil {
		return nil
	}
	return p.next.Publish(ctx, event)
}

func entryFromEvent(event events.Event) auditdomain.Entry {
	tenantID, _ := snowflake.ParseString(event.TenantID)
	targetType, _, _ := strings.Cut(event.Type, ".")
	return auditdomain.Entry{
		TenantID:   tenantID,
		Action:     event.Type,
		TargetType: targetType,
		TargetID:   event.AggregateID,
		EventID:    event.ID,
		Metadata:   event.Payload,
	}
}
