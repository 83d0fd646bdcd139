package events

import (
	"context"
	"errors"

	"cloud.google.com/go/pubsub"
)

// PubSubPublisher sends events to a Google Pub/Sub topic and waits for the
// server-assigned message id.
type PubSubPublisher struct {
	topic *pubsub.Topic
}

func NewPubSubPublisher(client *pubsub.Client, topic string) *PubSubPublisher {
	if client == nil || topic == "" {
		return &PubSubPublisher{}
	}
	return &PubSubPublisher{topic: client.Topic(topic)}
}

func (p *PubSubPublisher) Publish(ctx context.Context, event Event) error {
	if p == nil || p.topic == nil {
		return errors.New("pubsub publisher not configured")
	}
	body, err := event.Marshal()
	if err != nil {
		return err
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"event_type": event.Type,
			"tenant_id":  event.TenantID,
		},
	})
	_, err = result.Get(ctx)
	return err
}

// Stop flushes buffered messages.
func (p *PubSubPublisher) Stop() {
	if p != nil && p.topic != nil {
		p.topic.Stop()
	}
}
