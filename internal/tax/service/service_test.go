package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/bookkeeper/internal/tax/domain"
	"github.com/smallbiznis/bookkeeper/internal/tax/repository"
	"github.com/smallbiznis/bookkeeper/internal/testutil"
	"github.com/smallbiznis/bookkeeper/pkg/apperror"
	"github.com/smallbiznis/bookkeeper/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTaxCodeLifecycle(t *testing.T) {
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	repo := repository.NewRepository(db)
	svc := NewService(ServiceParams{Log: zap.NewNop(), GenID: node, Repo: repo})
	res := NewResolver(ResolverParams{Repository: repo})

	tenantID := node.Generate()
	ctx := tenantctx.WithTenantID(context.Background(), tenantID)

	created, err := svc.Create(ctx, taxdomain.CreateRequest{
		Code:     " gst28c ",
		Name:     "GST 28% with cess",
		Rate:     decimal.NewFromInt(28),
		CessRate: decimal.NewFromInt(12),
	})
	require.NoError(t, err)
	assert.Equal(t, "GST28C", created.Code)
	assert.True(t, created.IsEnabled)

	_, err = svc.Create(ctx, taxdomain.CreateRequest{Code: "GST28C", Name: "dup", Rate: decimal.NewFromInt(28)})
	assert.ErrorIs(t, err, taxdomain.ErrDuplicateCode)

	code, err := res.Resolve(context.Background(), tenantID, "gst28c")
	require.NoError(t, err)
	assert.Equal(t, "28.00", code.Rate.StringFixed(2))
	assert.Equal(t, "12.00", code.CessRate.StringFixed(2))

	listed, err := svc.List(ctx, taxdomain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	disabled, err := svc.Disable(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, disabled.IsEnabled)

	_, err = res.Resolve(context.Background(), tenantID, "GST28C")
	assert.True(t, apperror.HasCode(err, apperror.CodeMissingRate))
}

func TestTaxCodeValidation(t *testing.T) {
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	svc := NewService(ServiceParams{Log: zap.NewNop(), GenID: node, Repo: repository.NewRepository(db)})

	_, err := svc.Create(context.Background(), taxdomain.CreateRequest{Code: "GST5", Name: "x", Rate: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, taxdomain.ErrInvalidTenant)

	ctx := tenantctx.WithTenantID(context.Background(), node.Generate())
	_, err = svc.Create(ctx, taxdomain.CreateRequest{Code: "", Name: "x", Rate: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, taxdomain.ErrInvalidTaxCode)

	_, err = svc.Create(ctx, taxdomain.CreateRequest{Code: "NEG", Name: "x", Rate: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, taxdomain.ErrInvalidTaxRate)

	_, err = svc.Disable(ctx, "not-an-id")
	assert.ErrorIs(t, err, taxdomain.ErrInvalidID)
}

func TestResolverIsTenantScoped(t *testing.T) {
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	repo := repository.NewRepository(db)
	svc := NewService(ServiceParams{Log: zap.NewNop(), GenID: node, Repo: repo})
	res := NewResolver(ResolverParams{Repository: repo})

	owner := node.Generate()
	ctx := tenantctx.WithTenantID(context.Background(), owner)
	_, err := svc.Create(ctx, taxdomain.CreateRequest{Code: "GST18", Name: "GST 18%", Rate: decimal.NewFromInt(18)})
	require.NoError(t, err)

	_, err = res.Resolve(context.Background(), node.Generate(), "GST18")
	assert.ErrorIs(t, err, taxdomain.ErrMissingRate)

	_, err = res.Resolve(context.Background(), owner, "")
	assert.ErrorIs(t, err, taxdomain.ErrMissingRate)
}
