package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
	UpdateAuditStats(ctx context.Context, db *gorm.DB, id snowflake.ID, productCount, averageScore int, lastAuditAt time.Time) error
}

type Service interface {
	GetByID(ctx context.Context, id snowflake.ID) (Tenant, error)
	RecordAuditStats(ctx context.Context, id snowflake.ID, productCount, averageScore int, lastAuditAt time.Time) error
}

var (
	ErrNotFound  = errors.New("tenant_not_found")
	ErrInvalidID = errors.New("invalid_tenant_id")
)
