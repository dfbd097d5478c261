package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/davidlhotte/surfaced/internal/audit"
	"github.com/davidlhotte/surfaced/internal/auditlog"
	"github.com/davidlhotte/surfaced/internal/catalog"
	"github.com/davidlhotte/surfaced/internal/clock"
	"github.com/davidlhotte/surfaced/internal/config"
	"github.com/davidlhotte/surfaced/internal/migration"
	"github.com/davidlhotte/surfaced/internal/observability"
	"github.com/davidlhotte/surfaced/internal/plan"
	"github.com/davidlhotte/surfaced/internal/ratelimit"
	"github.com/davidlhotte/surfaced/internal/server"
	"github.com/davidlhotte/surfaced/internal/tenant"
	"github.com/davidlhotte/surfaced/internal/visibility"
	"github.com/davidlhotte/surfaced/internal/visibility/provider"
	"github.com/davidlhotte/surfaced/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		fx.Provide(config.NewScoringConfigHolder),
		db.Module,
		migration.Module,
		clock.Module,
		ratelimit.Module,

		// Functional domains
		tenant.Module,
		catalog.Module,
		plan.Module,
		audit.Module,
		auditlog.Module,
		provider.Module,
		visibility.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
