package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	posdomain "github.com/smallbiznis/bookkeeper/internal/pos/domain"
	"github.com/smallbiznis/bookkeeper/internal/pos/repository"
	"github.com/smallbiznis/bookkeeper/internal/testutil"
	"github.com/smallbiznis/bookkeeper/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) (posdomain.Service, context.Context) {
	t.Helper()
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(testutil.Epoch),
		Repo:  repository.Provide(),
	})
	return svc, tenantctx.WithTenantID(context.Background(), node.Generate())
}

func TestCreateDraftSale(t *testing.T) {
	svc, ctx := newService(t)
	rate := decimal.NewFromInt(5)

	created, err := svc.Create(ctx, posdomain.CreateRequest{
		SaleNumber: "POS-1",
		SaleDate:   time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		Lines: []posdomain.LineRequest{
			{Description: "Tea", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.RequireFromString("21"), TaxRate: &rate},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "cash", created.TenderKey)
	assert.True(t, created.IsInclusive)
	assert.Equal(t, posdomain.StatusDraft, created.Status)

	got, err := svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "63.00", got.Lines[0].Amount().StringFixed(2))
	assert.True(t, got.IsInclusive)

	_, err = svc.Create(ctx, posdomain.CreateRequest{
		SaleNumber: "POS-1",
		SaleDate:   time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		Lines:      []posdomain.LineRequest{{Description: "Tea", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}},
	})
	assert.ErrorIs(t, err, posdomain.ErrDuplicateNumber)
}

func TestCreateSaleExclusiveCard(t *testing.T) {
	svc, ctx := newService(t)
	exclusive := false

	created, err := svc.Create(ctx, posdomain.CreateRequest{
		SaleNumber:  "POS-2",
		SaleDate:    time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		TenderKey:   " Card_Clearing ",
		IsInclusive: &exclusive,
		Lines:       []posdomain.LineRequest{{Description: "Mug", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(250), TaxCode: "gst12"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "card_clearing", created.TenderKey)
	assert.False(t, created.IsInclusive)
	require.NotNil(t, created.Lines[0].TaxCode)
	assert.Equal(t, "GST12", *created.Lines[0].TaxCode)
}

func TestCreateSaleValidation(t *testing.T) {
	svc, ctx := newService(t)
	date := time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC)
	line := posdomain.LineRequest{Description: "Item", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}

	_, err := svc.Create(ctx, posdomain.CreateRequest{SaleDate: date, Lines: []posdomain.LineRequest{line}})
	assert.ErrorIs(t, err, posdomain.ErrInvalidSaleNumber)

	_, err = svc.Create(ctx, posdomain.CreateRequest{SaleNumber: "P", Lines: []posdomain.LineRequest{line}})
	assert.ErrorIs(t, err, posdomain.ErrInvalidSaleDate)

	_, err = svc.Create(ctx, posdomain.CreateRequest{SaleNumber: "P", SaleDate: date})
	assert.ErrorIs(t, err, posdomain.ErrInvalidLines)

	bad := line
	bad.Quantity = decimal.Zero
	_, err = svc.Create(ctx, posdomain.CreateRequest{SaleNumber: "P", SaleDate: date, Lines: []posdomain.LineRequest{bad}})
	assert.ErrorIs(t, err, posdomain.ErrInvalidQuantity)

	bad = line
	bad.UnitPrice = decimal.NewFromInt(-1)
	_, err = svc.Create(ctx, posdomain.CreateRequest{SaleNumber: "P", SaleDate: date, Lines: []posdomain.LineRequest{bad}})
	assert.ErrorIs(t, err, posdomain.ErrInvalidPrice)

	_, err = svc.Create(ctx, posdomain.CreateRequest{SaleNumber: "P", SaleDate: date, TenderKey: "petty cash", Lines: []posdomain.LineRequest{line}})
	assert.ErrorIs(t, err, posdomain.ErrInvalidTender)

	_, err = svc.Create(context.Background(), posdomain.CreateRequest{SaleNumber: "P", SaleDate: date, Lines: []posdomain.LineRequest{line}})
	assert.ErrorIs(t, err, posdomain.ErrInvalidTenant)

	_, err = svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, posdomain.ErrInvalidID)
}
