package service

import (
	"context"
	"testing"

	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	"github.com/smallbiznis/bookkeeper/internal/account/repository"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	"github.com/smallbiznis/bookkeeper/internal/config"
	"github.com/smallbiznis/bookkeeper/internal/testutil"
	"github.com/smallbiznis/bookkeeper/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveDefaultMapping(t *testing.T) {
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	tenantID := testutil.SeedTenant(t, db, node)

	r := NewResolver(ResolverParams{DB: db, Log: zap.NewNop(), Repo: repository.Provide(), Mapping: testutil.MappingHolder()})

	first, err := r.Resolve(context.Background(), tenantID, accountdomain.KeyAccountsReceivable)
	require.NoError(t, err)
	assert.Equal(t, testutil.AccountID(t, db, tenantID, accountdomain.KeyAccountsReceivable), first)

	second, err := r.Resolve(context.Background(), tenantID, " Accounts_Receivable ")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveMissingKey(t *testing.T) {
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	tenantID := testutil.SeedTenant(t, db, node)
	r := NewResolver(ResolverParams{DB: db, Log: zap.NewNop(), Repo: repository.Provide(), Mapping: testutil.MappingHolder()})

	_, err := r.Resolve(context.Background(), tenantID, "freight_inward")
	assert.ErrorIs(t, err, accountdomain.ErrNotFound)

	// configured code with no account in the chart
	_, err = r.Resolve(context.Background(), node.Generate(), accountdomain.KeyCash)
	assert.ErrorIs(t, err, accountdomain.ErrNotFound)

	_, err = r.Resolve(context.Background(), 0, accountdomain.KeyCash)
	assert.ErrorIs(t, err, accountdomain.ErrInvalidTenant)
}

func TestResolveTenantOverrideFromConfig(t *testing.T) {
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	tenantID := testutil.SeedTenant(t, db, node)

	mapping := config.DefaultAccountMapping()
	mapping.Tenants[tenantID.String()] = map[string]string{"sales_revenue": "REV-EXPORT"}
	holder := config.NewStaticAccountMappingHolder(mapping)

	fake := clock.NewFakeClock(testutil.Epoch)
	svc := NewService(Params{DB: db, Log: zap.NewNop(), GenID: node, Repo: repository.Provide(), Clock: fake})
	ctx := tenantctx.WithTenantID(context.Background(), tenantID)
	export, err := svc.Create(ctx, accountdomain.CreateRequest{Code: "rev-export", Name: "Export Sales", Category: "revenue"})
	require.NoError(t, err)
	assert.Equal(t, "REV-EXPORT", export.Code)

	r := NewResolver(ResolverParams{DB: db, Log: zap.NewNop(), Repo: repository.Provide(), Mapping: holder})
	got, err := r.Resolve(context.Background(), tenantID, accountdomain.KeySalesRevenue)
	require.NoError(t, err)
	assert.Equal(t, export.ID, got)
}

func TestResolveMappingRowWins(t *testing.T) {
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	tenantID := testutil.SeedTenant(t, db, node)
	ctx := tenantctx.WithTenantID(context.Background(), tenantID)

	fake := clock.NewFakeClock(testutil.Epoch)
	svc := NewService(Params{DB: db, Log: zap.NewNop(), GenID: node, Repo: repository.Provide(), Clock: fake})
	hdfc, err := svc.Create(ctx, accountdomain.CreateRequest{Code: "BANK-HDFC", Name: "HDFC Current", Category: "ASSET"})
	require.NoError(t, err)

	require.NoError(t, svc.SetMapping(ctx, accountdomain.MappingRequest{Key: "bank", AccountID: hdfc.ID.String()}))

	r := NewResolver(ResolverParams{DB: db, Log: zap.NewNop(), Repo: repository.Provide(), Mapping: testutil.MappingHolder()})
	got, err := r.Resolve(context.Background(), tenantID, accountdomain.KeyBank)
	require.NoError(t, err)
	assert.Equal(t, hdfc.ID, got)

	// replacing the override keeps a single row per key
	fallback := testutil.AccountID(t, db, tenantID, accountdomain.KeyBank)
	require.NoError(t, svc.SetMapping(ctx, accountdomain.MappingRequest{Key: "BANK", AccountID: fallback.String()}))
	got, err = r.Resolve(context.Background(), tenantID, accountdomain.KeyBank)
	require.NoError(t, err)
	assert.Equal(t, fallback, got)

	err = svc.SetMapping(ctx, accountdomain.MappingRequest{Key: "bank", AccountID: node.Generate().String()})
	assert.ErrorIs(t, err, accountdomain.ErrNotFound)
}

func TestResolveAllReportsEveryMissingKey(t *testing.T) {
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	tenantID := testutil.SeedTenant(t, db, node)
	r := NewResolver(ResolverParams{DB: db, Log: zap.NewNop(), Repo: repository.Provide(), Mapping: testutil.MappingHolder()})

	resolved, missing, err := r.ResolveAll(context.Background(), tenantID, []accountdomain.Key{
		accountdomain.KeyAccountsReceivable,
		"unknown_one",
		accountdomain.KeyOutputCGST,
		"unknown_two",
		"unknown_one",
	})
	require.NoError(t, err)
	assert.Len(t, resolved, 2)
	assert.Equal(t, []accountdomain.Key{"unknown_one", "unknown_two"}, missing)
}
