package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() accountdomain.Repository {
	return &repo{}
}

const accountColumns = `id, tenant_id, code, name, category, current_balance, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, account *accountdomain.Account) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.TenantID,
		account.Code,
		account.Name,
		account.Category,
		account.CurrentBalance,
		account.CreatedAt,
		account.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*accountdomain.Account, error) {
	var account accountdomain.Account
	err := db.WithContext(ctx).Raw(
		`SELECT `+accountColumns+` FROM accounts WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.ID == 0 {
		return nil, nil
	}
	return &account, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, code string) (*accountdomain.Account, error) {
	var account accountdomain.Account
	err := db.WithContext(ctx).Raw(
		`SELECT `+accountColumns+` FROM accounts WHERE tenant_id = ? AND code = ?`,
		tenantID,
		code,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.ID == 0 {
		return nil, nil
	}
	return &account, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, category accountdomain.Category) ([]accountdomain.Account, error) {
	var items []accountdomain.Account
	stmt := db.WithContext(ctx).
		Model(&accountdomain.Account{}).
		Where("tenant_id = ?", tenantID)
	if category != "" {
		stmt = stmt.Where("category = ?", category)
	}
	if err := stmt.Order("code ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateCategory(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, category accountdomain.Category, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE accounts SET category = ?, updated_at = ? WHERE tenant_id = ? AND id = ?`,
		category,
		updatedAt,
		tenantID,
		id,
	).Error
}

func (r *repo) HasPostings(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (bool, error) {
	var ids []int64
	err := db.WithContext(ctx).Raw(
		`SELECT id FROM journal_lines WHERE account_id = ? LIMIT 1`,
		accountID,
	).Scan(&ids).Error
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// ApplyBalance adds delta in SQL so concurrent postings to the same
// account never overwrite each other.
func (r *repo) ApplyBalance(ctx context.Context, db *gorm.DB, accountID snowflake.ID, delta decimal.Decimal, updatedAt time.Time) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE accounts SET current_balance = current_balance + ?, updated_at = ? WHERE id = ?`,
		delta,
		updatedAt,
		accountID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return accountdomain.ErrNotFound
	}
	return nil
}

func (r *repo) FindMapping(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, key accountdomain.Key) (*accountdomain.Mapping, error) {
	var mapping accountdomain.Mapping
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, mapping_key, account_id, created_at, updated_at
		 FROM account_mappings
		 WHERE tenant_id = ? AND mapping_key = ?`,
		tenantID,
		key,
	).Scan(&mapping).Error
	if err != nil {
		return nil, err
	}
	if mapping.ID == 0 {
		return nil, nil
	}
	return &mapping, nil
}

func (r *repo) UpsertMapping(ctx context.Context, db *gorm.DB, mapping *accountdomain.Mapping) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO account_mappings (id, tenant_id, mapping_key, account_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (tenant_id, mapping_key)
		 DO UPDATE SET account_id = excluded.account_id, updated_at = excluded.updated_at`,
		mapping.ID,
		mapping.TenantID,
		mapping.MappingKey,
		mapping.AccountID,
		mapping.CreatedAt,
		mapping.UpdatedAt,
	).Error
}
