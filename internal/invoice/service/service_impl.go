package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	invoicedomain "github.com/smallbiznis/bookkeeper/internal/invoice/domain"
	"github.com/smallbiznis/bookkeeper/pkg/db"
	"github.com/smallbiznis/bookkeeper/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  invoicedomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  invoicedomain.Repository
}

func NewService(p Params) invoicedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Create stores a draft invoice. Tax is computed when the invoice is
// posted, so lines may name a tax code that is defined later.
func (s *Service) Create(ctx context.Context, req invoicedomain.CreateRequest) (*invoicedomain.InvoiceWithLines, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return nil, invoicedomain.ErrInvalidTenant
	}
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return nil, invoicedomain.ErrInvalidCustomer
	}
	number := strings.TrimSpace(req.InvoiceNumber)
	if number == "" {
		return nil, invoicedomain.ErrInvalidInvoiceNumber
	}
	if req.InvoiceDate.IsZero() {
		return nil, invoicedomain.ErrInvalidInvoiceDate
	}
	if len(req.Lines) == 0 {
		return nil, invoicedomain.ErrInvalidLines
	}

	now := s.clock.Now()
	invoice := invoicedomain.Invoice{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		CustomerID:    customerID,
		InvoiceNumber: number,
		InvoiceDate:   req.InvoiceDate.UTC(),
		IsInterstate:  req.IsInterstate,
		IsInclusive:   req.IsInclusive,
		Status:        invoicedomain.StatusDraft,
		Subtotal:      decimal.Zero,
		CGST:          decimal.Zero,
		SGST:          decimal.Zero,
		IGST:          decimal.Zero,
		Cess:          decimal.Zero,
		TotalAmount:   decimal.Zero,
		BalanceDue:    decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	lines := make([]invoicedomain.Line, 0, len(req.Lines))
	for i, item := range req.Lines {
		line, err := s.buildLine(invoice.ID, i+1, item)
		if err != nil {
			return nil, err
		}
		line.CreatedAt = now
		lines = append(lines, line)
	}

	err = db.WithinTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return invoicedomain.ErrDuplicateNumber
			}
			return err
		}
		return s.repo.InsertLines(ctx, tx, lines)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("draft invoice created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Int("lines", len(lines)),
	)
	return &invoicedomain.InvoiceWithLines{Invoice: invoice, Lines: lines}, nil
}

func (s *Service) buildLine(invoiceID snowflake.ID, number int, req invoicedomain.LineRequest) (invoicedomain.Line, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return invoicedomain.Line{}, invoicedomain.ErrInvalidDescription
	}
	if !req.Amount.IsPositive() {
		return invoicedomain.Line{}, invoicedomain.ErrInvalidAmount
	}
	if (req.TaxRate != nil && req.TaxRate.IsNegative()) || req.CessRate.IsNegative() {
		return invoicedomain.Line{}, invoicedomain.ErrInvalidRate
	}

	line := invoicedomain.Line{
		ID:          s.genID.Generate(),
		InvoiceID:   invoiceID,
		LineNumber:  number,
		Description: description,
		Amount:      req.Amount,
		TaxRate:     req.TaxRate,
		CessRate:    req.CessRate,
		BaseAmount:  decimal.Zero,
		CGST:        decimal.Zero,
		SGST:        decimal.Zero,
		IGST:        decimal.Zero,
		Cess:        decimal.Zero,
		TotalAmount: decimal.Zero,
	}
	if code := strings.ToUpper(strings.TrimSpace(req.TaxCode)); code != "" {
		line.TaxCode = &code
	}
	if key := strings.ToLower(strings.TrimSpace(req.RevenueKey)); key != "" {
		line.RevenueKey = &key
	}
	return line, nil
}

func (s *Service) Get(ctx context.Context, id string) (*invoicedomain.InvoiceWithLines, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return nil, invoicedomain.ErrInvalidTenant
	}
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}

	invoice, err := s.repo.FindByID(ctx, s.db, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoicedomain.ErrNotFound
	}
	lines, err := s.repo.FindLines(ctx, s.db, invoice.ID)
	if err != nil {
		return nil, err
	}
	return &invoicedomain.InvoiceWithLines{Invoice: *invoice, Lines: lines}, nil
}

func (s *Service) ListReceipts(ctx context.Context, id string) ([]invoicedomain.Receipt, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return nil, invoicedomain.ErrInvalidTenant
	}
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}

	receipts, err := s.repo.ListReceipts(ctx, s.db, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if receipts == nil {
		receipts = []invoicedomain.Receipt{}
	}
	return receipts, nil
}
