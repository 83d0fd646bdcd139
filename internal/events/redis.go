package events

import (
	"context"
	"errors"
	"strings"

	redis "github.com/redis/go-redis/v9"
)

const defaultStream = "bookkeeper.events"

// RedisPublisher appends events to a Redis stream.
type RedisPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisPublisher(client *redis.Client, stream string, maxLen int64) *RedisPublisher {
	stream = strings.TrimSpace(stream)
	if stream == "" {
		stream = defaultStream
	}
	return &RedisPublisher{client: client, stream: stream, maxLen: maxLen}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	if p == nil || p.client == nil {
		return errors.New("redis publisher not configured")
	}
	body, err := event.Marshal()
	if err != nil {
		return err
	}
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"id":        event.ID,
			"type":      event.Type,
			"tenant_id": event.TenantID,
			"data":      string(body),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	return p.client.XAdd(ctx, args).Err()
}
