package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	invoicedomain "github.com/smallbiznis/bookkeeper/internal/invoice/domain"
	"github.com/smallbiznis/bookkeeper/internal/invoice/repository"
	"github.com/smallbiznis/bookkeeper/internal/testutil"
	"github.com/smallbiznis/bookkeeper/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) (invoicedomain.Service, context.Context, func() string) {
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
	ctx := tenantctx.WithTenantID(context.Background(), node.Generate())
	return svc, ctx, func() string { return node.Generate().String() }
}

func TestCreateDraftInvoice(t *testing.T) {
	svc, ctx, newID := newService(t)
	rate := decimal.NewFromInt(18)

	created, err := svc.Create(ctx, invoicedomain.CreateRequest{
		CustomerID:    newID(),
		InvoiceNumber: " INV-1001 ",
		InvoiceDate:   time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		Lines: []invoicedomain.LineRequest{
			{Description: "Consulting", Amount: decimal.NewFromInt(600), TaxRate: &rate},
			{Description: "Support", Amount: decimal.NewFromInt(400), TaxCode: "gst18", RevenueKey: "Service_Revenue"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-1001", created.InvoiceNumber)
	assert.Equal(t, invoicedomain.StatusDraft, created.Status)
	require.Len(t, created.Lines, 2)
	assert.Equal(t, 2, created.Lines[1].LineNumber)
	require.NotNil(t, created.Lines[1].TaxCode)
	assert.Equal(t, "GST18", *created.Lines[1].TaxCode)
	require.NotNil(t, created.Lines[1].RevenueKey)
	assert.Equal(t, "service_revenue", *created.Lines[1].RevenueKey)

	got, err := svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	require.NotNil(t, got.Lines[0].TaxRate)
	assert.Equal(t, "18.00", got.Lines[0].TaxRate.StringFixed(2))
	assert.Nil(t, got.Lines[1].TaxRate)
	assert.Equal(t, "600.00", got.Lines[0].Amount.StringFixed(2))

	receipts, err := svc.ListReceipts(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Empty(t, receipts)
}

func TestCreateInvoiceValidation(t *testing.T) {
	svc, ctx, newID := newService(t)
	date := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	valid := func() invoicedomain.CreateRequest {
		return invoicedomain.CreateRequest{
			CustomerID:    newID(),
			InvoiceNumber: "INV-1",
			InvoiceDate:   date,
			Lines:         []invoicedomain.LineRequest{{Description: "Item", Amount: decimal.NewFromInt(10)}},
		}
	}

	_, err := svc.Create(context.Background(), valid())
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidTenant)

	req := valid()
	req.CustomerID = "abc"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidCustomer)

	req = valid()
	req.Lines = nil
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidLines)

	req = valid()
	req.Lines[0].Amount = decimal.Zero
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidAmount)

	req = valid()
	negative := decimal.NewFromInt(-5)
	req.Lines[0].TaxRate = &negative
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidRate)

	_, err = svc.Create(ctx, valid())
	require.NoError(t, err)
	_, err = svc.Create(ctx, valid())
	assert.ErrorIs(t, err, invoicedomain.ErrDuplicateNumber)

	_, err = svc.Get(ctx, newID())
	assert.ErrorIs(t, err, invoicedomain.ErrNotFound)
}
