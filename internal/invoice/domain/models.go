// Package domain contains persistence models for sales invoices and the
// receipts settled against them.
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

// Invoice is a sales invoice. Tax columns and balance_due are filled in
// when the invoice is posted.
type Invoice struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID       snowflake.ID    `gorm:"column:tenant_id;not null" json:"tenant_id"`
	CustomerID     snowflake.ID    `gorm:"column:customer_id;not null" json:"customer_id"`
	InvoiceNumber  string          `gorm:"column:invoice_number;type:text;not null" json:"invoice_number"`
	InvoiceDate    time.Time       `gorm:"column:invoice_date;type:date;not null" json:"invoice_date"`
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

func (Invoice) TableName() string { return "invoices" }

// Line is one invoice line. Either TaxRate or TaxCode supplies the rate.
type Line struct {
	ID          snowflake.ID     `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID     `gorm:"column:invoice_id;not null" json:"invoice_id"`
	LineNumber  int              `gorm:"column:line_number;not null" json:"line_number"`
	Description string           `gorm:"type:text;not null" json:"description"`
	Amount      decimal.Decimal  `gorm:"type:numeric(20,4);not null" json:"amount"`
	TaxRate     *decimal.Decimal `gorm:"column:tax_rate;type:numeric(7,4)" json:"tax_rate,omitempty"`
	CessRate    decimal.Decimal  `gorm:"column:cess_rate;type:numeric(7,4);not null" json:"cess_rate"`
	TaxCode     *string          `gorm:"column:tax_code;type:text" json:"tax_code,omitempty"`
	RevenueKey  *string          `gorm:"column:revenue_key;type:text" json:"revenue_key,omitempty"`
	BaseAmount  decimal.Decimal  `gorm:"column:base_amount;type:numeric(20,4);not null" json:"base_amount"`
	CGST        decimal.Decimal  `gorm:"column:cgst;type:numeric(20,4);not null" json:"cgst"`
	SGST        decimal.Decimal  `gorm:"column:sgst;type:numeric(20,4);not null" json:"sgst"`
	IGST        decimal.Decimal  `gorm:"column:igst;type:numeric(20,4);not null" json:"igst"`
	Cess        decimal.Decimal  `gorm:"type:numeric(20,4);not null" json:"cess"`
	TotalAmount decimal.Decimal  `gorm:"column:total_amount;type:numeric(20,4);not null" json:"total_amount"`
	CreatedAt   time.Time        `gorm:"not null" json:"created_at"`
}

func (Line) TableName() string { return "invoice_lines" }

// Receipt is money received against one invoice. Amount is the gross
// amount settled; TDSDeducted of it was withheld by the customer.
type Receipt struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID       snowflake.ID    `gorm:"column:tenant_id;not null" json:"tenant_id"`
	InvoiceID      snowflake.ID    `gorm:"column:invoice_id;not null" json:"invoice_id"`
	ReceiptDate    time.Time       `gorm:"column:receipt_date;type:date;not null" json:"receipt_date"`
	Amount         decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"amount"`
	TDSDeducted    decimal.Decimal `gorm:"column:tds_deducted;type:numeric(20,4);not null" json:"tds_deducted"`
	DepositKey     string          `gorm:"column:deposit_key;type:text;not null" json:"deposit_key"`
	Reference      *string         `gorm:"type:text" json:"reference,omitempty"`
	JournalEntryID snowflake.ID    `gorm:"column:journal_entry_id;not null" json:"journal_entry_id"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
}

func (Receipt) TableName() string { return "receipts" }

// InvoiceWithLines is an invoice together with its ordered lines.
type InvoiceWithLines struct {
	Invoice
	Lines []Line `json:"lines"`
}
