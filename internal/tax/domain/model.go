package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// TaxCode is a tenant-scoped named GST rate, e.g. GST18 with an optional
// cess. Lines that omit an explicit rate resolve one through their code.
type TaxCode struct {
	ID       snowflake.ID `gorm:"primaryKey"`
	TenantID snowflake.ID `gorm:"column:tenant_id;not null;index"`

	Code     string          `gorm:"type:text;not null"`
	Name     string          `gorm:"type:text;not null"`
	Rate     decimal.Decimal `gorm:"type:numeric(7,4);not null"`
	CessRate decimal.Decimal `gorm:"column:cess_rate;type:numeric(7,4);not null"`

	IsEnabled bool `gorm:"column:is_enabled;not null;default:true"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (TaxCode) TableName() string { return "tax_codes" }

func (t *TaxCode) Validate() error {
	if strings.TrimSpace(t.Code) == "" {
		return ErrInvalidTaxCode
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrInvalidName
	}
	if t.Rate.IsNegative() || t.CessRate.IsNegative() {
		return ErrInvalidTaxRate
	}
	return nil
}
