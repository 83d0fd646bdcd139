package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	"github.com/smallbiznis/bookkeeper/internal/clock"
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
	Repo  accountdomain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  accountdomain.Repository
	clock clock.Clock
}

func NewService(p Params) accountdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("account.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req accountdomain.CreateRequest) (*accountdomain.Account, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return nil, accountdomain.ErrInvalidTenant
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, accountdomain.ErrInvalidCode
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, accountdomain.ErrInvalidName
	}
	category, err := accountdomain.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	account := &accountdomain.Account{
		ID:             s.genID.Generate(),
		TenantID:       tenantID,
		Code:           code,
		Name:           name,
		Category:       category,
		CurrentBalance: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, s.db, account); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, accountdomain.ErrDuplicateCode
		}
		return nil, err
	}
	return account, nil
}

func (s *Service) Get(ctx context.Context, id string) (*accountdomain.Account, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return nil, accountdomain.ErrInvalidTenant
	}
	accountID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, accountdomain.ErrInvalidID
	}

	account, err := s.repo.FindByID(ctx, s.db, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, accountdomain.ErrNotFound
	}
	return account, nil
}

func (s *Service) List(ctx context.Context, req accountdomain.ListRequest) ([]accountdomain.Account, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return nil, accountdomain.ErrInvalidTenant
	}

	var category accountdomain.Category
	if strings.TrimSpace(req.Category) != "" {
		parsed, err := accountdomain.ParseCategory(req.Category)
		if err != nil {
			return nil, err
		}
		category = parsed
	}
	return s.repo.List(ctx, s.db, tenantID, category)
}

// ChangeCategory reclassifies an account that has no journal lines yet.
func (s *Service) ChangeCategory(ctx context.Context, id string, raw string) (*accountdomain.Account, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return nil, accountdomain.ErrInvalidTenant
	}
	accountID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, accountdomain.ErrInvalidID
	}
	category, err := accountdomain.ParseCategory(raw)
	if err != nil {
		return nil, err
	}

	var updated *accountdomain.Account
	err = db.WithinTx(ctx, s.db, func(tx *gorm.DB) error {
		account, err := s.repo.FindByID(ctx, tx, tenantID, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return accountdomain.ErrNotFound
		}
		if account.Category == category {
			updated = account
			return nil
		}

		locked, err := s.repo.HasPostings(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if locked {
			return accountdomain.ErrCategoryLocked
		}

		now := s.clock.Now()
		if err := s.repo.UpdateCategory(ctx, tx, tenantID, accountID, category, now); err != nil {
			return err
		}
		account.Category = category
		account.UpdatedAt = now
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetMapping points a semantic key at a tenant account, replacing any
// previous override.
func (s *Service) SetMapping(ctx context.Context, req accountdomain.MappingRequest) error {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return accountdomain.ErrInvalidTenant
	}
	key := accountdomain.NormalizeKey(req.Key)
	if key == "" {
		return accountdomain.ErrInvalidKey
	}
	accountID, err := snowflake.ParseString(strings.TrimSpace(req.AccountID))
	if err != nil {
		return accountdomain.ErrInvalidID
	}

	account, err := s.repo.FindByID(ctx, s.db, tenantID, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return accountdomain.ErrNotFound
	}

	now := s.clock.Now()
	if err := s.repo.UpsertMapping(ctx, s.db, &accountdomain.Mapping{
		ID:         s.genID.Generate(),
		TenantID:   tenantID,
		MappingKey: key,
		AccountID:  accountID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		return err
	}

	s.log.Info("account mapping updated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("key", string(key)),
		zap.String("account_id", accountID.String()),
	)
	return nil
}
