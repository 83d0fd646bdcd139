package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/bookkeeper/internal/tax/domain"
	"go.uber.org/fx"
)

type ResolverParams struct {
	fx.In

	Repository taxdomain.Repository
}

type resolver struct {
	repo taxdomain.Repository
}

func NewResolver(p ResolverParams) taxdomain.RateResolver {
	return &resolver{repo: p.Repository}
}

func (r *resolver) Resolve(ctx context.Context, tenantID snowflake.ID, code string) (*taxdomain.TaxCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, taxdomain.ErrMissingRate
	}
	def, err := r.repo.FindEnabledByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, taxdomain.ErrMissingRate
	}
	return def, nil
}
