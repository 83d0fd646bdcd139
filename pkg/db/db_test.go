package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/bookkeeper/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, conn.Exec(`CREATE TABLE widgets (
		id INTEGER PRIMARY KEY,
		code TEXT NOT NULL UNIQUE
	)`).Error)
	return conn
}

func countWidgets(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Raw(`SELECT COUNT(*) FROM widgets`).Scan(&n).Error)
	return n
}

func TestWithinTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		conn := openTestDB(t)
		err := WithinTx(ctx, conn, func(tx *gorm.DB) error {
			return tx.Exec(`INSERT INTO widgets (id, code) VALUES (1, 'a')`).Error
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), countWidgets(t, conn))
	})

	t.Run("rolls back on error", func(t *testing.T) {
		conn := openTestDB(t)
		boom := errors.New("boom")
		err := WithinTx(ctx, conn, func(tx *gorm.DB) error {
			if err := tx.Exec(`INSERT INTO widgets (id, code) VALUES (1, 'a')`).Error; err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, int64(0), countWidgets(t, conn))
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		conn := openTestDB(t)
		assert.Panics(t, func() {
			_ = WithinTx(ctx, conn, func(tx *gorm.DB) error {
				if err := tx.Exec(`INSERT INTO widgets (id, code) VALUES (1, 'a')`).Error; err != nil {
					return err
				}
				panic("unexpected")
			})
		})
		assert.Equal(t, int64(0), countWidgets(t, conn))
	})
}

func TestIsDuplicateKeyErr(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, conn.Exec(`INSERT INTO widgets (id, code) VALUES (1, 'a')`).Error)

	err := conn.Exec(`INSERT INTO widgets (id, code) VALUES (2, 'a')`).Error
	require.Error(t, err)
	assert.True(t, IsDuplicateKeyErr(err))

	assert.False(t, IsDuplicateKeyErr(nil))
	assert.False(t, IsDuplicateKeyErr(errors.New("connection refused")))
	assert.True(t, IsDuplicateKeyErr(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
}

func TestDialect(t *testing.T) {
	for _, dbType := range []string{"postgres", "sqlite", " Postgres "} {
		dialector, err := Dialect(config.Config{DBType: dbType, DBName: "bookkeeper"})
		require.NoError(t, err, dbType)
		assert.NotNil(t, dialector, dbType)
	}

	for _, dbType := range []string{"mysql", "", "oracle"} {
		_, err := Dialect(config.Config{DBType: dbType})
		require.Error(t, err, dbType)
		assert.Contains(t, err.Error(), "unsupported database type")
	}
}
