package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	obscontext "github.com/smallbiznis/bookkeeper/internal/observability/context"
	"github.com/smallbiznis/bookkeeper/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func observeGlobals(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestWithContextAddsCorrelationFields(t *testing.T) {
	logs := observeGlobals(t)

	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = tenantctx.WithTenantID(ctx, snowflake.ID(42))
	FromContext(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "42", fields["tenant_id"])
}

func TestGormLoggerTrace(t *testing.T) {
	logs := observeGlobals(t)
	l := NewGormLogger(DefaultGormLoggerConfig())
	fc := func() (string, int64) { return "INSERT INTO journal_entries VALUES (?)", 1 }

	l.Trace(context.Background(), time.Now(), fc, nil)
	assert.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "INSERT", entry.ContextMap()["operation"])

	l.Trace(context.Background(), time.Now(), fc, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 1, logs.Len())

	l.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
}

func TestGormLoggerSilent(t *testing.T) {
	logs := observeGlobals(t)
	l := NewGormLogger(DefaultGormLoggerConfig()).LogMode(gormlogger.Silent)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, errors.New("boom"))
	l.Error(context.Background(), "ignored")
	assert.Equal(t, 0, logs.Len())
}

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("WITH x AS (SELECT 1) SELECT * FROM x"))
	assert.Equal(t, "UPDATE", operationFromSQL("  update accounts set x = 1"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}

func TestGormLoggerDropsBoundValues(t *testing.T) {
	var filter gorm.ParamsFilter = NewGormLogger(DefaultGormLoggerConfig())

	sql, params := filter.ParamsFilter(context.Background(), "UPDATE invoices SET balance_due = ? WHERE id = ?", "580.00", int64(42))
	assert.Equal(t, "UPDATE invoices SET balance_due = ? WHERE id = ?", sql)
	assert.Empty(t, params)
}
