package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	"github.com/smallbiznis/bookkeeper/internal/config"
	"gorm.io/gorm"
)

// EnsureChartOfAccounts creates the default chart for tenantID using the
// account codes from mapping. Existing codes are left untouched.
func EnsureChartOfAccounts(ctx context.Context, db *gorm.DB, node *snowflake.Node, tenantID snowflake.ID, mapping config.AccountMapping) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if node == nil {
		return errors.New("seed id generator is required")
	}
	if tenantID == 0 {
		return errors.New("seed tenant id is required")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for _, entry := range accountdomain.DefaultChart {
			code, ok := mapping.CodeFor(tenantID.String(), string(entry.Key))
			if !ok {
				continue
			}
			err := tx.WithContext(ctx).
				Exec(`
					INSERT INTO accounts (id, tenant_id, code, name, category, current_balance, created_at, updated_at)
					VALUES (?, ?, ?, ?, ?, 0, ?, ?)
					ON CONFLICT (tenant_id, code) DO NOTHING
				`,
					node.Generate(),
					tenantID,
					code,
					entry.Name,
					entry.Category,
					now,
					now,
				).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
