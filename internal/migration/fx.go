package migration

import (
	auditdomain "github.com/davidlhotte/surfaced/internal/audit/domain"
	auditlogdomain "github.com/davidlhotte/surfaced/internal/auditlog/domain"
	catalogdomain "github.com/davidlhotte/surfaced/internal/catalog/domain"
	"github.com/davidlhotte/surfaced/internal/config"
	tenantdomain "github.com/davidlhotte/surfaced/internal/tenant/domain"
	visibilitydomain "github.com/davidlhotte/surfaced/internal/visibility/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// sqlite is only used for local development, AutoMigrate is enough there.
			return conn.AutoMigrate(
				&tenantdomain.Tenant{},
				&catalogdomain.CatalogItem{},
				&auditdomain.AuditResult{},
				&visibilitydomain.CheckResult{},
				&auditlogdomain.Entry{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
