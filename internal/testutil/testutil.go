// Package testutil opens throwaway SQLite databases carrying the full
// schema so service tests run against real SQL.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	"github.com/smallbiznis/bookkeeper/internal/config"
	"github.com/smallbiznis/bookkeeper/internal/migration"
	"github.com/smallbiznis/bookkeeper/internal/seed"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Epoch is the fixed start time handed to fake clocks in tests.
var Epoch = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

// OpenDB returns an isolated in-memory database with every migration
// applied. A single connection keeps the shared cache consistent.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.ApplyStatements(sqlDB))
	return conn
}

// Node returns a snowflake generator for test ids.
func Node(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

// SeedTenant creates a tenant id and its default chart of accounts.
func SeedTenant(t *testing.T, db *gorm.DB, node *snowflake.Node) snowflake.ID {
	t.Helper()
	tenantID := node.Generate()
	require.NoError(t, seed.EnsureChartOfAccounts(context.Background(), db, node, tenantID, config.DefaultAccountMapping()))
	return tenantID
}

// MappingHolder returns the built-in account mapping.
func MappingHolder() *config.AccountMappingHolder {
	return config.NewStaticAccountMappingHolder(config.DefaultAccountMapping())
}

// AccountID looks up the seeded account for key.
func AccountID(t *testing.T, db *gorm.DB, tenantID snowflake.ID, key accountdomain.Key) snowflake.ID {
	t.Helper()
	code, ok := config.DefaultAccountMapping().CodeFor(tenantID.String(), string(key))
	require.True(t, ok, "no default code for %s", key)

	var account accountdomain.Account
	require.NoError(t, db.Raw(`SELECT * FROM accounts WHERE tenant_id = ? AND code = ?`, tenantID, code).Scan(&account).Error)
	require.NotZero(t, account.ID, "account %s not seeded", code)
	return account.ID
}

// Balance returns an account's current balance as a 2dp string.
func Balance(t *testing.T, db *gorm.DB, accountID snowflake.ID) string {
	t.Helper()
	var account accountdomain.Account
	require.NoError(t, db.Raw(`SELECT * FROM accounts WHERE id = ?`, accountID).Scan(&account).Error)
	require.NotZero(t, account.ID)
	return account.CurrentBalance.StringFixed(2)
}
