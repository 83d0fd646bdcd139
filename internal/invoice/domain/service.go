package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Service manages draft invoices. Posting and receipts go through the
// posting engine.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*InvoiceWithLines, error)
	Get(ctx context.Context, id string) (*InvoiceWithLines, error)
	ListReceipts(ctx context.Context, invoiceID string) ([]Receipt, error)
}

type CreateRequest struct {
	CustomerID    string        `json:"customer_id"`
	InvoiceNumber string        `json:"invoice_number"`
	InvoiceDate   time.Time     `json:"invoice_date"`
	IsInterstate  bool          `json:"is_interstate"`
	IsInclusive   bool          `json:"is_inclusive"`
	Lines         []LineRequest `json:"lines"`
}

type LineRequest struct {
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	TaxRate     *decimal.Decimal `json:"tax_rate"`
	CessRate    decimal.Decimal  `json:"cess_rate"`
	TaxCode     string           `json:"tax_code"`
	RevenueKey  string           `json:"revenue_key"`
}
