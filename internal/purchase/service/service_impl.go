package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	purchasedomain "github.com/smallbiznis/bookkeeper/internal/purchase/domain"
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
	Repo  purchasedomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  purchasedomain.Repository
}

func NewService(p Params) purchasedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("purchase.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req purchasedomain.CreateRequest) (*purchasedomain.BillWithLines, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return nil, purchasedomain.ErrInvalidTenant
	}
	vendorID, err := snowflake.ParseString(strings.TrimSpace(req.VendorID))
	if err != nil || vendorID == 0 {
		return nil, purchasedomain.ErrInvalidVendor
	}
	number := strings.TrimSpace(req.BillNumber)
	if number == "" {
		return nil, purchasedomain.ErrInvalidBillNumber
	}
	if req.BillDate.IsZero() {
		return nil, purchasedomain.ErrInvalidBillDate
	}
	if len(req.Lines) == 0 {
		return nil, purchasedomain.ErrInvalidLines
	}

	now := s.clock.Now()
	bill := purchasedomain.Bill{
		ID:           s.genID.Generate(),
		TenantID:     tenantID,
		VendorID:     vendorID,
		BillNumber:   number,
		BillDate:     req.BillDate.UTC(),
		IsInterstate: req.IsInterstate,
		IsInclusive:  req.IsInclusive,
		Status:       purchasedomain.StatusDraft,
		Subtotal:     decimal.Zero,
		CGST:         decimal.Zero,
		SGST:         decimal.Zero,
		IGST:         decimal.Zero,
		Cess:         decimal.Zero,
		TotalAmount:  decimal.Zero,
		BalanceDue:   decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	lines := make([]purchasedomain.Line, 0, len(req.Lines))
	for i, item := range req.Lines {
		description := strings.TrimSpace(item.Description)
		if description == "" {
			return nil, purchasedomain.ErrInvalidDescription
		}
		if !item.Amount.IsPositive() {
			return nil, purchasedomain.ErrInvalidAmount
		}
		if (item.TaxRate != nil && item.TaxRate.IsNegative()) || item.CessRate.IsNegative() {
			return nil, purchasedomain.ErrInvalidRate
		}

		line := purchasedomain.Line{
			ID:          s.genID.Generate(),
			BillID:      bill.ID,
			LineNumber:  i + 1,
			Description: description,
			Amount:      item.Amount,
			TaxRate:     item.TaxRate,
			CessRate:    item.CessRate,
			BaseAmount:  decimal.Zero,
			CGST:        decimal.Zero,
			SGST:        decimal.Zero,
			IGST:        decimal.Zero,
			Cess:        decimal.Zero,
			TotalAmount: decimal.Zero,
			CreatedAt:   now,
		}
		if code := strings.ToUpper(strings.TrimSpace(item.TaxCode)); code != "" {
			line.TaxCode = &code
		}
		if key := strings.ToLower(strings.TrimSpace(item.ExpenseKey)); key != "" {
			line.ExpenseKey = &key
		}
		lines = append(lines, line)
	}

	err = db.WithinTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &bill); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return purchasedomain.ErrDuplicateNumber
			}
			return err
		}
		return s.repo.InsertLines(ctx, tx, lines)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("draft purchase bill created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("bill_id", bill.ID.String()),
		zap.String("bill_number", bill.BillNumber),
	)
	return &purchasedomain.BillWithLines{Bill: bill, Lines: lines}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*purchasedomain.BillWithLines, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return nil, purchasedomain.ErrInvalidTenant
	}
	billID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, purchasedomain.ErrInvalidID
	}

	bill, err := s.repo.FindByID(ctx, s.db, tenantID, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, purchasedomain.ErrNotFound
	}
	lines, err := s.repo.FindLines(ctx, s.db, bill.ID)
	if err != nil {
		return nil, err
	}
	return &purchasedomain.BillWithLines{Bill: *bill, Lines: lines}, nil
}

func (s *Service) ListPayments(ctx context.Context, id string) ([]purchasedomain.VendorPayment, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return nil, purchasedomain.ErrInvalidTenant
	}
	billID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, purchasedomain.ErrInvalidID
	}

	payments, err := s.repo.ListPayments(ctx, s.db, tenantID, billID)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []purchasedomain.VendorPayment{}
	}
	return payments, nil
}
