package events

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/pubsub"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/bookkeeper/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("events",
	fx.Provide(NewPublisher),
	fx.Provide(NewEmitter),
)

// NewPublisher selects the driver named by EVENTS_DRIVER.
func NewPublisher(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (Publisher, error) {
	switch cfg.Events.Driver {
	case config.EventsDriverRedis:
		addr := strings.TrimSpace(cfg.Events.RedisAddress)
		if addr == "" {
			return nil, errors.New("events redis address is required")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Events.RedisPassword,
			DB:       cfg.Events.RedisDB,
		})
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		log.Info("events publishing to redis stream", zap.String("stream", cfg.Events.Stream))
		return NewRedisPublisher(client, cfg.Events.Stream, cfg.Events.StreamMaxLen), nil
	case config.EventsDriverPubSub:
		if cfg.Events.PubSubProjectID == "" {
			return nil, errors.New("events pubsub project id is required")
		}
		client, err := pubsub.NewClient(context.Background(), cfg.Events.PubSubProjectID)
		if err != nil {
			return nil, err
		}
		publisher := NewPubSubPublisher(client, cfg.Events.PubSubTopic)
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				publisher.Stop()
				return client.Close()
			},
		})
		log.Info("events publishing to pubsub", zap.String("topic", cfg.Events.PubSubTopic))
		return publisher, nil
	default:
		return NewLogPublisher(log), nil
	}
}
