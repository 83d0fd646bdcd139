package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/bookkeeper/internal/tax/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) taxdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, code *taxdomain.TaxCode) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO tax_codes (
			id, tenant_id, code, name, rate, cess_rate, is_enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		code.ID,
		code.TenantID,
		code.Code,
		code.Name,
		code.Rate,
		code.CessRate,
		code.IsEnabled,
		code.CreatedAt,
		code.UpdatedAt,
	).Error
}

func (r *repository) FindByID(ctx context.Context, tenantID, id snowflake.ID) (*taxdomain.TaxCode, error) {
	var code taxdomain.TaxCode
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, code, name, rate, cess_rate, is_enabled, created_at, updated_at
		 FROM tax_codes
		 WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Scan(&code).Error
	if err != nil {
		return nil, err
	}
	if code.ID == 0 {
		return nil, nil
	}
	return &code, nil
}

func (r *repository) FindEnabledByCode(ctx context.Context, tenantID snowflake.ID, value string) (*taxdomain.TaxCode, error) {
	var code taxdomain.TaxCode
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, code, name, rate, cess_rate, is_enabled, created_at, updated_at
		 FROM tax_codes
		 WHERE tenant_id = ? AND code = ? AND is_enabled = ?`,
		tenantID,
		value,
		true,
	).Scan(&code).Error
	if err != nil {
		return nil, err
	}
	if code.ID == 0 {
		return nil, nil
	}
	return &code, nil
}

func (r *repository) List(ctx context.Context, tenantID snowflake.ID, filter taxdomain.ListRequest) ([]taxdomain.TaxCode, error) {
	var items []taxdomain.TaxCode
	stmt := r.db.WithContext(ctx).
		Model(&taxdomain.TaxCode{}).
		Where("tenant_id = ?", tenantID)

	if filter.Code != "" {
		stmt = stmt.Where("code = ?", filter.Code)
	}
	if filter.IsEnabled != nil {
		stmt = stmt.Where("is_enabled = ?", *filter.IsEnabled)
	}

	if err := stmt.Order("code ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, code *taxdomain.TaxCode) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE tax_codes
		 SET name = ?, rate = ?, cess_rate = ?, is_enabled = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ?`,
		code.Name,
		code.Rate,
		code.CessRate,
		code.IsEnabled,
		code.UpdatedAt,
		code.TenantID,
		code.ID,
	).Error
}
