package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookkeeper/internal/account"
	"github.com/smallbiznis/bookkeeper/internal/audit"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	"github.com/smallbiznis/bookkeeper/internal/config"
	"github.com/smallbiznis/bookkeeper/internal/events"
	"github.com/smallbiznis/bookkeeper/internal/invoice"
	"github.com/smallbiznis/bookkeeper/internal/ledger"
	"github.com/smallbiznis/bookkeeper/internal/migration"
	"github.com/smallbiznis/bookkeeper/internal/observability"
	"github.com/smallbiznis/bookkeeper/internal/pos"
	"github.com/smallbiznis/bookkeeper/internal/posting"
	"github.com/smallbiznis/bookkeeper/internal/purchase"
	"github.com/smallbiznis/bookkeeper/internal/reconciliation"
	"github.com/smallbiznis/bookkeeper/internal/server"
	"github.com/smallbiznis/bookkeeper/internal/tax"
	"github.com/smallbiznis/bookkeeper/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		events.Module,

		// Functional Domains
		account.Module,
		tax.Module,
		ledger.Module,
		invoice.Module,
		purchase.Module,
		pos.Module,
		posting.Module,
		reconciliation.Module,
		audit.Module,
		audit.Decorate,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
