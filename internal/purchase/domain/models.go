// Package domain contains persistence models for vendor bills and the
// payments made against them.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Status moves draft -> posted -> partial -> paid and never backwards.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusPosted  Status = "posted"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

type Bill struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID       snowflake.ID    `gorm:"column:tenant_id;not null" json:"tenant_id"`
	VendorID       snowflake.ID    `gorm:"column:vendor_id;not null" json:"vendor_id"`
	BillNumber     string          `gorm:"column:bill_number;type:text;not null" json:"bill_number"`
	BillDate       time.Time       `gorm:"column:bill_date;type:date;not null" json:"bill_date"`
	IsInterstate   bool            `gorm:"column:is_interstate;not null" json:"is_interstate"`
	IsInclusive    bool            `gorm:"column:is_inclusive;not null" json:"is_inclusive"`
	Status         Status          `gorm:"type:text;not null" json:"status"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"subtotal"`
	CGST           decimal.Decimal `gorm:"column:cgst;type:numeric(20,4);not null" json:"cgst"`
	SGST           decimal.Decimal `gorm:"column:sgst;type:numeric(20,4);not null" json:"sgst"`
	IGST           decimal.Decimal `gorm:"column:igst;type:numeric(20,4);not null" json:"igst"`
	Cess           decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"cess"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:numeric(20,4);not null" json:"total_amount"`
	BalanceDue     decimal.Decimal `gorm:"column:balance_due;type:numeric(20,4);not null" json:"balance_due"`
	JournalEntryID *snowflake.ID   `gorm:"column:journal_entry_id" json:"journal_entry_id,omitempty"`
	PostedAt       *time.Time      `gorm:"column:posted_at" json:"posted_at,omitempty"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`
}

func (Bill) TableName() string { return "purchase_bills" }

type Line struct {
	ID          snowflake.ID     `gorm:"primaryKey" json:"id"`
	BillID      snowflake.ID     `gorm:"column:bill_id;not null" json:"bill_id"`
	LineNumber  int              `gorm:"column:line_number;not null" json:"line_number"`
	Description string           `gorm:"type:text;not null" json:"description"`
	Amount      decimal.Decimal  `gorm:"type:numeric(20,4);not null" json:"amount"`
	TaxRate     *decimal.Decimal `gorm:"column:tax_rate;type:numeric(7,4)" json:"tax_rate,omitempty"`
	CessRate    decimal.Decimal  `gorm:"column:cess_rate;type:numeric(7,4);not null" json:"cess_rate"`
	TaxCode     *string          `gorm:"column:tax_code;type:text" json:"tax_code,omitempty"`
	ExpenseKey  *string          `gorm:"column:expense_key;type:text" json:"expense_key,omitempty"`
	BaseAmount  decimal.Decimal  `gorm:"column:base_amount;type:numeric(20,4);not null" json:"base_amount"`
	CGST        decimal.Decimal  `gorm:"column:cgst;type:numeric(20,4);not null" json:"cgst"`
	SGST        decimal.Decimal  `gorm:"column:sgst;type:numeric(20,4);not null" json:"sgst"`
	IGST        decimal.Decimal  `gorm:"column:igst;type:numeric(20,4);not null" json:"igst"`
	Cess        decimal.Decimal  `gorm:"type:numeric(20,4);not null" json:"cess"`
	TotalAmount decimal.Decimal  `gorm:"column:total_amount;type:numeric(20,4);not null" json:"total_amount"`
	CreatedAt   time.Time        `gorm:"not null" json:"created_at"`
}

func (Line) TableName() string { return "purchase_bill_lines" }

// VendorPayment settles Amount of a bill; TDSWithheld of it is kept back
// and owed to the tax authority instead of the vendor.
type VendorPayment struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID       snowflake.ID    `gorm:"column:tenant_id;not null" json:"tenant_id"`
	BillID         snowflake.ID    `gorm:"column:bill_id;not null" json:"bill_id"`
	PaymentDate    time.Time       `gorm:"column:payment_date;type:date;not null" json:"payment_date"`
	Amount         decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"amount"`
	TDSWithheld    decimal.Decimal `gorm:"column:tds_withheld;type:numeric(20,4);not null" json:"tds_withheld"`
	PaidFromKey    string          `gorm:"column:paid_from_key;type:text;not null" json:"paid_from_key"`
	Reference      *string         `gorm:"type:text" json:"reference,omitempty"`
	JournalEntryID snowflake.ID    `gorm:"column:journal_entry_id;not null" json:"journal_entry_id"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
}

func (VendorPayment) TableName() string { return "vendor_payments" }

type BillWithLines struct {
	Bill
	Lines []Line `json:"lines"`
}
