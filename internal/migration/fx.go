package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookkeeper/internal/config"
	"github.com/smallbiznis/bookkeeper/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, mapping *config.AccountMappingHolder, node *snowflake.Node, log *zap.Logger) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		switch strings.ToLower(strings.TrimSpace(cfg.DBType)) {
		case "postgres":
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		case "sqlite":
			if err := ApplyStatements(sqlDB); err != nil {
				return err
			}
		default:
			return fmt.Errorf("no migrations for database type %q", cfg.DBType)
		}
		log.Info("schema migrations applied", zap.String("type", cfg.DBType))

		if cfg.DefaultTenantID == 0 {
			return nil
		}
		tenantID := snowflake.ID(cfg.DefaultTenantID)
		return seed.EnsureChartOfAccounts(context.Background(), conn, node, tenantID, mapping.Get())
	}),
)
