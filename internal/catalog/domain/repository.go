package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	CountByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (int64, error)
	ListByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, limit int) ([]*CatalogItem, error)
	// MostCommonProductType returns the tenant's dominant product type,
	// or empty when the catalog has no typed items.
	MostCommonProductType(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (string, error)
}
