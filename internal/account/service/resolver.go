package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	"github.com/smallbiznis/bookkeeper/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ResolverParams struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    accountdomain.Repository
	Mapping *config.AccountMappingHolder
}

type Resolver struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    accountdomain.Repository
	mapping *config.AccountMappingHolder
}

func NewResolver(p ResolverParams) accountdomain.Resolver {
	return &Resolver{
		db:      p.DB,
		log:     p.Log.Named("account.resolver"),
		repo:    p.Repo,
		mapping: p.Mapping,
	}
}

// Resolve looks the key up in the tenant override table first, then
// through the configured code table and the tenant's chart of accounts.
func (r *Resolver) Resolve(ctx context.Context, tenantID snowflake.ID, key accountdomain.Key) (snowflake.ID, error) {
	if tenantID == 0 {
		return 0, accountdomain.ErrInvalidTenant
	}
	key = accountdomain.NormalizeKey(string(key))
	if key == "" {
		return 0, accountdomain.ErrInvalidKey
	}

	mapping, err := r.repo.FindMapping(ctx, r.db, tenantID, key)
	if err != nil {
		return 0, err
	}
	if mapping != nil {
		return mapping.AccountID, nil
	}

	code, ok := r.mapping.Get().CodeFor(tenantID.String(), string(key))
	if !ok {
		return 0, accountdomain.ErrNotFound
	}

	account, err := r.repo.FindByCode(ctx, r.db, tenantID, code)
	if err != nil {
		return 0, err
	}
	if account == nil {
		r.log.Debug("account code not in chart",
			zap.String("tenant_id", tenantID.String()),
			zap.String("key", string(key)),
			zap.String("code", code),
		)
		return 0, accountdomain.ErrNotFound
	}
	return account.ID, nil
}

func (r *Resolver) ResolveAll(ctx context.Context, tenantID snowflake.ID, keys []accountdomain.Key) (map[accountdomain.Key]snowflake.ID, []accountdomain.Key, error) {
	resolved := make(map[accountdomain.Key]snowflake.ID, len(keys))
	var missing []accountdomain.Key
	for _, key := range keys {
		key = accountdomain.NormalizeKey(string(key))
		if _, seen := resolved[key]; seen {
			continue
		}
		id, err := r.Resolve(ctx, tenantID, key)
		switch {
		case err == nil:
			resolved[key] = id
		case errors.Is(err, accountdomain.ErrNotFound):
			if !containsKey(missing, key) {
				missing = append(missing, key)
			}
		default:
			return nil, nil, err
		}
	}
	return resolved, missing, nil
}

func containsKey(keys []accountdomain.Key, key accountdomain.Key) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
