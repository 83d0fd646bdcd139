package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	"github.com/smallbiznis/bookkeeper/internal/account/repository"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	"github.com/smallbiznis/bookkeeper/internal/testutil"
	"github.com/smallbiznis/bookkeeper/pkg/apperror"
	"github.com/smallbiznis/bookkeeper/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateAndList(t *testing.T) {
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	tenantID := node.Generate()
	ctx := tenantctx.WithTenantID(context.Background(), tenantID)
	svc := NewService(Params{DB: db, Log: zap.NewNop(), GenID: node, Repo: repository.Provide(), Clock: clock.NewFakeClock(testutil.Epoch)})

	acc, err := svc.Create(ctx, accountdomain.CreateRequest{Code: "exp-rent", Name: "Rent", Category: "expense"})
	require.NoError(t, err)
	assert.Equal(t, accountdomain.CategoryExpense, acc.Category)
	assert.True(t, acc.CurrentBalance.IsZero())

	_, err = svc.Create(ctx, accountdomain.CreateRequest{Code: "EXP-RENT", Name: "Rent again", Category: "EXPENSE"})
	assert.ErrorIs(t, err, accountdomain.ErrDuplicateCode)

	_, err = svc.Create(ctx, accountdomain.CreateRequest{Code: "X", Name: "X", Category: "INCOME"})
	assert.ErrorIs(t, err, accountdomain.ErrInvalidCategory)

	got, err := svc.Get(ctx, acc.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Rent", got.Name)

	items, err := svc.List(ctx, accountdomain.ListRequest{Category: "expense"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = svc.List(ctx, accountdomain.ListRequest{Category: "asset"})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = svc.Get(tenantctx.WithTenantID(context.Background(), node.Generate()), acc.ID.String())
	assert.ErrorIs(t, err, accountdomain.ErrNotFound)
}

func TestChangeCategoryLockedAfterPosting(t *testing.T) {
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	tenantID := testutil.SeedTenant(t, db, node)
	ctx := tenantctx.WithTenantID(context.Background(), tenantID)
	svc := NewService(Params{DB: db, Log: zap.NewNop(), GenID: node, Repo: repository.Provide(), Clock: clock.NewFakeClock(testutil.Epoch)})

	fresh, err := svc.Create(ctx, accountdomain.CreateRequest{Code: "MISC", Name: "Misc", Category: "EXPENSE"})
	require.NoError(t, err)

	changed, err := svc.ChangeCategory(ctx, fresh.ID.String(), "asset")
	require.NoError(t, err)
	assert.Equal(t, accountdomain.CategoryAsset, changed.Category)

	cash := testutil.AccountID(t, db, tenantID, accountdomain.KeyCash)
	entryID := node.Generate()
	now := testutil.Epoch
	require.NoError(t, db.Exec(
		`INSERT INTO journal_entries (id, tenant_id, entry_number, entry_date, entry_type, status, total_debit, total_credit, is_balanced, created_at)
		 VALUES (?, ?, 'STD-000001', ?, 'STD', 'draft', 10, 10, TRUE, ?)`,
		entryID, tenantID, now, now).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO journal_lines (id, journal_entry_id, line_number, account_id, debit_amount, credit_amount, created_at)
		 VALUES (?, ?, 1, ?, ?, 0, ?), (?, ?, 2, ?, 0, ?, ?)`,
		node.Generate(), entryID, fresh.ID, decimal.NewFromInt(10), now,
		node.Generate(), entryID, cash, decimal.NewFromInt(10), now.Add(time.Second)).Error)

	_, err = svc.ChangeCategory(ctx, fresh.ID.String(), "EXPENSE")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeCategoryLocked))

	// same category is a no-op even when locked
	same, err := svc.ChangeCategory(ctx, fresh.ID.String(), "ASSET")
	require.NoError(t, err)
	assert.Equal(t, accountdomain.CategoryAsset, same.Category)
}
