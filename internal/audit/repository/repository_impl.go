package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/davidlhotte/surfaced/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Upsert is idempotent per (tenant_id, item_id); concurrent writers for
// distinct items never conflict.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, result *domain.AuditResult) error {
	if result == nil {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO audit_results (
			id, tenant_id, item_id, title, handle, score, issues,
			has_images, has_description, has_metafields, description_length,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id, item_id)
		DO UPDATE SET title = EXCLUDED.title,
		              handle = EXCLUDED.handle,
		              score = EXCLUDED.score,
		              issues = EXCLUDED.issues,
		              has_images = EXCLUDED.has_images,
		              has_description = EXCLUDED.has_description,
		              has_metafields = EXCLUDED.has_metafields,
		              description_length = EXCLUDED.description_length,
		              updated_at = EXCLUDED.updated_at`,
		result.ID,
		result.TenantID,
		result.ItemID,
		result.Title,
		result.Handle,
		result.Score,
		result.Issues,
		result.HasImages,
		result.HasDescription,
		result.HasMetafields,
		result.DescriptionLength,
		result.CreatedAt,
		result.UpdatedAt,
	).Error
}

func (r *repo) ListByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListFilter) ([]*domain.AuditResult, error) {
	var results []*domain.AuditResult
	stmt := db.WithContext(ctx).
		Model(&domain.AuditResult{}).
		Where("tenant_id = ?", tenantID)

	if filter.Cursor != nil {
		createdAt, err := time.Parse(time.RFC3339Nano, filter.Cursor.CreatedAt)
		if err != nil {
			return nil, domain.ErrInvalidPageToken
		}
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			createdAt,
			createdAt,
			filter.Cursor.ID,
		)
	}

	stmt = stmt.Order("created_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	if err := stmt.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
