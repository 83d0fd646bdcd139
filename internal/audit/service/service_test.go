package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/bookkeeper/internal/audit/domain"
	"github.com/smallbiznis/bookkeeper/internal/audit/repository"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	"github.com/smallbiznis/bookkeeper/internal/events"
	obscontext "github.com/smallbiznis/bookkeeper/internal/observability/context"
	"github.com/smallbiznis/bookkeeper/internal/testutil"
	"github.com/smallbiznis/bookkeeper/pkg/db/pagination"
	"github.com/smallbiznis/bookkeeper/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	node     *snowflake.Node
	clock    *clock.FakeClock
	svc      auditdomain.Service
	tenantID snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := testutil.OpenDB(t)
	node := testutil.Node(t)
	fake := clock.NewFakeClock(testutil.Epoch)
	svc := NewService(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
	})
	return &fixture{
		node:     node,
		clock:    fake,
		svc:      svc,
		tenantID: node.Generate(),
	}
}

func (f *fixture) ctx() context.Context {
	return tenantctx.WithTenantID(context.Background(), f.tenantID)
}

func TestRecordStoresMaskedMetadata(t *testing.T) {
	f := newFixture(t)
	ctx := obscontext.WithRequestID(context.Background(), "req-1")

	err := f.svc.Record(ctx, auditdomain.Entry{
		TenantID:   f.tenantID,
		Action:     "receipt.created",
		TargetType: "receipt",
		TargetID:   "42",
		EventID:    "evt-1",
		Metadata: map[string]any{
			"amount":    "1000.00",
			"reference": "UTR_123456789",
		},
	})
	require.NoError(t, err)

	resp, err := f.svc.List(f.ctx(), auditdomain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)

	got := resp.AuditLogs[0]
	assert.Equal(t, "receipt.created", got.Action)
	assert.Equal(t, "receipt", got.TargetType)
	require.NotNil(t, got.TargetID)
	assert.Equal(t, "42", *got.TargetID)
	require.NotNil(t, got.EventID)
	assert.Equal(t, "evt-1", *got.EventID)
	require.NotNil(t, got.RequestID)
	assert.Equal(t, "req-1", *got.RequestID)
	assert.Equal(t, "1000.00", got.Metadata["amount"])
	assert.NotEqual(t, "UTR_123456789", got.Metadata["reference"])
	assert.Contains(t, got.Metadata["reference"], "6789")
	assert.True(t, got.CreatedAt.Equal(testutil.Epoch))
}

func TestRecordRejectsMissingFields(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Record(context.Background(), auditdomain.Entry{TenantID: f.tenantID})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)

	err = f.svc.Record(context.Background(), auditdomain.Entry{Action: "entry.posted"})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTenant)
}

func TestListPagesNewestFirst(t *testing.T) {
	f := newFixture(t)
	actions := []string{"invoice.posted", "receipt.created", "reconciliation.completed"}
	for _, action := range actions {
		require.NoError(t, f.svc.Record(context.Background(), auditdomain.Entry{
			TenantID: f.tenantID,
			Action:   action,
		}))
		f.clock.Advance(time.Minute)
	}

	first, err := f.svc.List(f.ctx(), auditdomain.ListRequest{
		Pagination: pagination.Pagination{PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, first.AuditLogs, 2)
	assert.True(t, first.HasMore)
	assert.NotEmpty(t, first.NextPageToken)
	assert.Equal(t, "reconciliation.completed", first.AuditLogs[0].Action)
	assert.Equal(t, "receipt.created", first.AuditLogs[1].Action)

	second, err := f.svc.List(f.ctx(), auditdomain.ListRequest{
		Pagination: pagination.Pagination{PageSize: 2, PageToken: first.NextPageToken},
	})
	require.NoError(t, err)
	require.Len(t, second.AuditLogs, 1)
	assert.False(t, second.HasMore)
	assert.Equal(t, "invoice.posted", second.AuditLogs[0].Action)
}

func TestListFiltersAndTenantScope(t *testing.T) {
	f := newFixture(t)
	other := f.node.Generate()

	require.NoError(t, f.svc.Record(context.Background(), auditdomain.Entry{TenantID: f.tenantID, Action: "invoice.posted", TargetType: "invoice"}))
	require.NoError(t, f.svc.Record(context.Background(), auditdomain.Entry{TenantID: f.tenantID, Action: "entry.posted", TargetType: "entry"}))
	require.NoError(t, f.svc.Record(context.Background(), auditdomain.Entry{TenantID: other, Action: "invoice.posted", TargetType: "invoice"}))

	resp, err := f.svc.List(f.ctx(), auditdomain.ListRequest{TargetType: "invoice"})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)
	assert.Equal(t, f.tenantID, resp.AuditLogs[0].TenantID)

	_, err = f.svc.List(context.Background(), auditdomain.ListRequest{})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTenant)

	_, err = f.svc.List(f.ctx(), auditdomain.ListRequest{Pagination: pagination.Pagination{PageToken: "%%%"}})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidPageToken)

	start := testutil.Epoch.Add(time.Hour)
	end := testutil.Epoch
	_, err = f.svc.List(f.ctx(), auditdomain.ListRequest{StartAt: &start, EndAt: &end})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTimeRange)
}

type recordingPublisher struct {
	published []events.Event
	err       error
}

func (r *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	r.published = append(r.published, event)
	return r.err
}

func TestDecoratedPublisherRecordsThenForwards(t *testing.T) {
	f := newFixture(t)
	next := &recordingPublisher{err: errors.New("broker down")}
	pub := DecoratePublisher(next, f.svc, zap.NewNop())

	err := pub.Publish(context.Background(), events.Event{
		ID:          "evt-9",
		Type:        "payment.created",
		TenantID:    f.tenantID.String(),
		AggregateID: "77",
		Payload:     map[string]any{"amount": "250.00"},
	})
	assert.EqualError(t, err, "broker down")
	require.Len(t, next.published, 1)

	resp, err := f.svc.List(f.ctx(), auditdomain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)
	assert.Equal(t, "payment.created", resp.AuditLogs[0].Action)
	assert.Equal(t, "payment", resp.AuditLogs[0].TargetType)
	require.NotNil(t, resp.AuditLogs[0].TargetID)
	assert.Equal(t, "77", *resp.AuditLogs[0].TargetID)
}

func TestDecoratedPublisherForwardsWhenAuditFails(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zapcore.WarnLevel)
	next := &recordingPublisher{}
	pub := DecoratePublisher(next, f.svc, zap.New(core))

	require.NoError(t, pub.Publish(context.Background(), events.Event{ID: "evt-1", Type: "entry.posted"}))
	assert.Len(t, next.published, 1)
	assert.Equal(t, 1, logs.FilterMessage("audit record skipped").Len())
}
