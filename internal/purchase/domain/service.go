package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*BillWithLines, error)
	Get(ctx context.Context, id string) (*BillWithLines, error)
	ListPayments(ctx context.Context, billID string) ([]VendorPayment, error)
}

type CreateRequest struct {
	VendorID     string        `json:"vendor_id"`
	BillNumber   string        `json:"bill_number"`
	BillDate     time.Time     `json:"bill_date"`
	IsInterstate bool          `json:"is_interstate"`
	IsInclusive  bool          `json:"is_inclusive"`
	Lines        []LineRequest `json:"lines"`
}

type LineRequest struct {
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	TaxRate     *decimal.Decimal `json:"tax_rate"`
	CessRate    decimal.Decimal  `json:"cess_rate"`
	TaxCode     string           `json:"tax_code"`
	ExpenseKey  string           `json:"expense_key"`
}
