package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*SaleWithLines, error)
	Get(ctx context.Context, id string) (*SaleWithLines, error)
}

type CreateRequest struct {
	SaleNumber string    `json:"sale_number"`
	SaleDate   time.Time `json:"sale_date"`
	// TenderKey is the semantic account receiving the money, cash when
	// empty.
	TenderKey string `json:"tender_key"`
	// IsInclusive defaults to true: shelf prices include GST.
	IsInclusive *bool         `json:"is_inclusive"`
	Lines       []LineRequest `json:"lines"`
}

type LineRequest struct {
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	TaxRate     *decimal.Decimal `json:"tax_rate"`
	CessRate    decimal.Decimal  `json:"cess_rate"`
	TaxCode     string           `json:"tax_code"`
}
