package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/davidlhotte/surfaced/internal/visibility/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, result *domain.CheckResult) error {
	if result == nil {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO visibility_check_results (
			id, tenant_id, platform, query, is_mentioned, mention_context,
			position, competitors, response_quality, raw_response, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		result.TenantID,
		result.Platform,
		result.Query,
		result.IsMentioned,
		result.MentionContext,
		result.Position,
		result.Competitors,
		result.ResponseQuality,
		result.RawResponse,
		result.CreatedAt,
	).Error
}

// CountSince derives the quota state: no separate counter exists to
// drift out of sync with the rows.
func (r *repo) CountSince(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, since time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.CheckResult{}).
		Where("tenant_id = ? AND created_at >= ?", tenantID, since.UTC()).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) ListByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListFilter) ([]*domain.CheckResult, error) {
	var results []*domain.CheckResult
	stmt := db.WithContext(ctx).
		Model(&domain.CheckResult{}).
		Where("tenant_id = ?", tenantID)

	if filter.Cursor != nil {
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt,
			filter.Cursor.CreatedAt,
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
