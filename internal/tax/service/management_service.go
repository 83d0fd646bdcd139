package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/bookkeeper/internal/tax/domain"
	"github.com/smallbiznis/bookkeeper/pkg/db"
	"github.com/smallbiznis/bookkeeper/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParams struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  taxdomain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  taxdomain.Repository
}

func NewService(p ServiceParams) taxdomain.Service {
	return &Service{
		log:   p.Log.Named("tax.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req taxdomain.ListRequest) ([]taxdomain.Response, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return nil, taxdomain.ErrInvalidTenant
	}

	filter := taxdomain.ListRequest{
		Code:      strings.ToUpper(strings.TrimSpace(req.Code)),
		IsEnabled: req.IsEnabled,
	}

	items, err := s.repo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]taxdomain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(&item))
	}
	return resp, nil
}

func (s *Service) Create(ctx context.Context, req taxdomain.CreateRequest) (*taxdomain.Response, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return nil, taxdomain.ErrInvalidTenant
	}

	isEnabled := true
	if req.IsEnabled != nil {
		isEnabled = *req.IsEnabled
	}

	now := time.Now().UTC()
	record := &taxdomain.TaxCode{
		ID:        s.genID.Generate(),
		TenantID:  tenantID,
		Code:      strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:      strings.TrimSpace(req.Name),
		Rate:      req.Rate,
		CessRate:  req.CessRate,
		IsEnabled: isEnabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, taxdomain.ErrDuplicateCode
		}
		return nil, err
	}

	s.log.Info("tax code created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("code", record.Code),
		zap.String("rate", record.Rate.String()),
	)
	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) Disable(ctx context.Context, id string) (*taxdomain.Response, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return nil, taxdomain.ErrInvalidTenant
	}

	codeID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, taxdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, tenantID, codeID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, taxdomain.ErrNotFound
	}

	item.IsEnabled = false
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	resp := toResponse(item)
	return &resp, nil
}

func toResponse(code *taxdomain.TaxCode) taxdomain.Response {
	return taxdomain.Response{
		ID:        code.ID.String(),
		TenantID:  code.TenantID.String(),
		Code:      code.Code,
		Name:      code.Name,
		Rate:      code.Rate,
		CessRate:  code.CessRate,
		IsEnabled: code.IsEnabled,
		CreatedAt: code.CreatedAt,
		UpdatedAt: code.UpdatedAt,
	}
}
