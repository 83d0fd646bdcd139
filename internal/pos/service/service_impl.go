package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	posdomain "github.com/smallbiznis/bookkeeper/internal/pos/domain"
	"github.com/smallbiznis/bookkeeper/pkg/db"
	"github.com/smallbiznis/bookkeeper/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultTenderKey = "cash"

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  posdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  posdomain.Repository
}

func NewService(p Params) posdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("pos.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req posdomain.CreateRequest) (*posdomain.SaleWithLines, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return nil, posdomain.ErrInvalidTenant
	}
	number := strings.TrimSpace(req.SaleNumber)
	if number == "" {
		return nil, posdomain.ErrInvalidSaleNumber
	}
	if req.SaleDate.IsZero() {
		return nil, posdomain.ErrInvalidSaleDate
	}
	tender := strings.ToLower(strings.TrimSpace(req.TenderKey))
	if tender == "" {
		tender = defaultTenderKey
	}
	if strings.ContainsAny(tender, " \t") {
		return nil, posdomain.ErrInvalidTender
	}
	if len(req.Lines) == 0 {
		return nil, posdomain.ErrInvalidLines
	}
	inclusive := true
	if req.IsInclusive != nil {
		inclusive = *req.IsInclusive
	}

	now := s.clock.Now()
	sale := posdomain.Sale{
		ID:          s.genID.Generate(),
		TenantID:    tenantID,
		SaleNumber:  number,
		SaleDate:    req.SaleDate.UTC(),
		TenderKey:   tender,
		IsInclusive: inclusive,
		Status:      posdomain.StatusDraft,
		Subtotal:    decimal.Zero,
		CGST:        decimal.Zero,
		SGST:        decimal.Zero,
		Cess:        decimal.Zero,
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	lines := make([]posdomain.Line, 0, len(req.Lines))
	for i, item := range req.Lines {
		description := strings.TrimSpace(item.Description)
		if description == "" {
			return nil, posdomain.ErrInvalidDescription
		}
		if !item.Quantity.IsPositive() {
			return nil, posdomain.ErrInvalidQuantity
		}
		if !item.UnitPrice.IsPositive() {
			return nil, posdomain.ErrInvalidPrice
		}
		if (item.TaxRate != nil && item.TaxRate.IsNegative()) || item.CessRate.IsNegative() {
			return nil, posdomain.ErrInvalidRate
		}
		line := posdomain.Line{
			ID:          s.genID.Generate(),
			SaleID:      sale.ID,
			LineNumber:  i + 1,
			Description: description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			CessRate:    item.CessRate,
			BaseAmount:  decimal.Zero,
			CGST:        decimal.Zero,
			SGST:        decimal.Zero,
			Cess:        decimal.Zero,
			TotalAmount: decimal.Zero,
			CreatedAt:   now,
		}
		if code := strings.ToUpper(strings.TrimSpace(item.TaxCode)); code != "" {
			line.TaxCode = &code
		}
		lines = append(lines, line)
	}

	err := db.WithinTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &sale); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return posdomain.ErrDuplicateNumber
			}
			return err
		}
		return s.repo.InsertLines(ctx, tx, lines)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("draft pos sale created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.String("tender_key", sale.TenderKey),
	)
	return &posdomain.SaleWithLines{Sale: sale, Lines: lines}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*posdomain.SaleWithLines, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return nil, posdomain.ErrInvalidTenant
	}
	saleID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, posdomain.ErrInvalidID
	}

	sale, err := s.repo.FindByID(ctx, s.db, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, posdomain.ErrNotFound
	}
	lines, err := s.repo.FindLines(ctx, s.db, sale.ID)
	if err != nil {
		return nil, err
	}
	return &posdomain.SaleWithLines{Sale: *sale, Lines: lines}, nil
}
