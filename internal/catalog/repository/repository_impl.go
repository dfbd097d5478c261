package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/davidlhotte/surfaced/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CountByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.CatalogItem{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) ListByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, limit int) ([]*domain.CatalogItem, error) {
	var items []*domain.CatalogItem
	stmt := db.WithContext(ctx).
		Model(&domain.CatalogItem{}).
		Where("tenant_id = ?", tenantID).
		Order("created_at asc, id asc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) MostCommonProductType(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (string, error) {
	var productType string
	err := db.WithContext(ctx).Raw(
		`SELECT product_type
		 FROM catalog_items
		 WHERE tenant_id = ? AND product_type <> ''
		 GROUP BY product_type
		 ORDER BY COUNT(*) DESC, product_type ASC
		 LIMIT 1`,
		tenantID,
	).Scan(&productType).Error
	if err != nil {
		return "", err
	}
	return productType, nil
}
