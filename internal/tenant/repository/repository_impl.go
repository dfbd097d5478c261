package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/davidlhotte/surfaced/internal/tenant/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, domain, plan_tier, product_count, average_audit_score,
		        last_audit_at, created_at, updated_at
		 FROM tenants WHERE id = ?`,
		id,
	).Scan(&tenant).Error
	if err != nil {
		return nil, err
	}
	if tenant.ID == 0 {
		return nil, nil
	}
	return &tenant, nil
}

func (r *repo) UpdateAuditStats(ctx context.Context, db *gorm.DB, id snowflake.ID, productCount, averageScore int, lastAuditAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tenants
		 SET product_count = ?, average_audit_score = ?, last_audit_at = ?, updated_at = ?
		 WHERE id = ?`,
		productCount,
		averageScore,
		lastAuditAt,
		time.Now().UTC(),
		id,
	).Error
}
