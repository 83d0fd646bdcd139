package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	"github.com/smallbiznis/bookkeeper/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type recordingPublisher struct {
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func TestRedisPublisherAppendsToStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	publisher := NewRedisPublisher(client, "", 10)
	event := Event{ID: "evt-1", Type: TypeInvoicePosted, TenantID: "7", AggregateID: "9", OccurredAt: testutil.Epoch}
	require.NoError(t, publisher.Publish(context.Background(), event))

	entries, err := client.XRange(context.Background(), "bookkeeper.events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, TypeInvoicePosted, entries[0].Values["type"])
	assert.Equal(t, "7", entries[0].Values["tenant_id"])

	var decoded Event
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["data"].(string)), &decoded))
	assert.Equal(t, "9", decoded.AggregateID)
}

func TestRedisPublisherUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	err := NewRedisPublisher(client, "s", 0).Publish(context.Background(), Event{ID: "x", Type: TypeJournalPosted})
	assert.Error(t, err)
}

func TestPubSubPublisher(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	client, err := pubsub.NewClient(ctx, "bookkeeper-test", option.WithGRPCConn(conn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	_, err = client.CreateTopic(ctx, "events")
	require.NoError(t, err)

	publisher := NewPubSubPublisher(client, "events")
	t.Cleanup(publisher.Stop)
	require.NoError(t, publisher.Publish(ctx, Event{ID: "evt-2", Type: TypeReceiptCreated, TenantID: "3"}))

	messages := srv.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, TypeReceiptCreated, messages[0].Attributes["event_type"])
	assert.Contains(t, string(messages[0].Data), `"id":"evt-2"`)
}

func TestEmitterSwallowsPublishErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	publisher := &recordingPublisher{err: errors.New("broker down")}
	emitter := NewEmitter(EmitterParams{
		Publisher: publisher,
		Log:       zap.New(core),
		Clock:     clock.NewFakeClock(testutil.Epoch),
	})

	emitter.Emit(context.Background(), TypePosSalePosted, snowflake.ID(1), snowflake.ID(2), nil)

	warnings := logs.FilterMessage("event publish failed").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, TypePosSalePosted, warnings[0].ContextMap()["event_type"])
}

func TestEmitterBuildsEnvelope(t *testing.T) {
	publisher := &recordingPublisher{}
	emitter := NewEmitter(EmitterParams{
		Publisher: publisher,
		Log:       zap.NewNop(),
		Clock:     clock.NewFakeClock(testutil.Epoch),
	})

	emitter.Emit(context.Background(), TypeJournalPosted, snowflake.ID(5), snowflake.ID(6), map[string]any{"entry_number": "STD-000001"})

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "5", event.TenantID)
	assert.Equal(t, "6", event.AggregateID)
	assert.True(t, event.OccurredAt.Equal(testutil.Epoch))
	assert.Equal(t, "STD-000001", event.Payload["entry_number"])

	var nilEmitter *Emitter
	nilEmitter.Emit(context.Background(), TypeJournalPosted, 1, 2, nil)
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	require.NoError(t, NewLogPublisher(zap.New(core)).Publish(context.Background(), Event{ID: "e", Type: TypeReconciliationCompleted}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, TypeReconciliationCompleted, logs.All()[0].ContextMap()["event_type"])
}
