// Package domain contains persistence models for point-of-sale tickets.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Status moves draft -> posted.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusPosted Status = "posted"
)

// Sale is a counter sale settled on the spot. POS sales are always
// intrastate, so only CGST, SGST and cess apply.
type Sale struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID       snowflake.ID    `gorm:"column:tenant_id;not null" json:"tenant_id"`
	SaleNumber     string          `gorm:"column:sale_number;type:text;not null" json:"sale_number"`
	SaleDate       time.Time       `gorm:"column:sale_date;type:date;not null" json:"sale_date"`
	TenderKey      string          `gorm:"column:tender_key;type:text;not null" json:"tender_key"`
	IsInclusive    bool            `gorm:"column:is_inclusive;not null" json:"is_inclusive"`
	Status         Status          `gorm:"type:text;not null" json:"status"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"subtotal"`
	CGST           decimal.Decimal `gorm:"column:cgst;type:numeric(20,4);not null" json:"cgst"`
	SGST           decimal.Decimal `gorm:"column:sgst;type:numeric(20,4);not null" json:"sgst"`
	Cess           decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"cess"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:numeric(20,4);not null" json:"total_amount"`
	JournalEntryID *snowflake.ID   `gorm:"column:journal_entry_id" json:"journal_entry_id,omitempty"`
	PostedAt       *time.Time      `gorm:"column:posted_at" json:"posted_at,omitempty"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`
}

func (Sale) TableName() string { return "pos_sales" }

type Line struct {
	ID          snowflake.ID     `gorm:"primaryKey" json:"id"`
	SaleID      snowflake.ID     `gorm:"column:sale_id;not null" json:"sale_id"`
	LineNumber  int              `gorm:"column:line_number;not null" json:"line_number"`
	Description string           `gorm:"type:text;not null" json:"description"`
	Quantity    decimal.Decimal  `gorm:"type:numeric(20,4);not null" json:"quantity"`
	UnitPrice   decimal.Decimal  `gorm:"column:unit_price;type:numeric(20,4);not null" json:"unit_price"`
	TaxRate     *decimal.Decimal `gorm:"column:tax_rate;type:numeric(7,4)" json:"tax_rate,omitempty"`
	CessRate    decimal.Decimal  `gorm:"column:cess_rate;type:numeric(7,4);not null" json:"cess_rate"`
	TaxCode     *string          `gorm:"column:tax_code;type:text" json:"tax_code,omitempty"`
	BaseAmount  decimal.Decimal  `gorm:"column:base_amount;type:numeric(20,4);not null" json:"base_amount"`
	CGST        decimal.Decimal  `gorm:"column:cgst;type:numeric(20,4);not null" json:"cgst"`
	SGST        decimal.Decimal  `gorm:"column:sgst;type:numeric(20,4);not null" json:"sgst"`
	Cess        decimal.Decimal  `gorm:"type:numeric(20,4);not null" json:"cess"`
	TotalAmount decimal.Decimal  `gorm:"column:total_amount;type:numeric(20,4);not null" json:"total_amount"`
	CreatedAt   time.Time        `gorm:"not null" json:"created_at"`
}

func (Line) TableName() string { return "pos_sale_lines" }

// Amount is the line value before tax treatment.
func (l Line) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

type SaleWithLines struct {
	Sale
	Lines []Line `json:"lines"`
}
