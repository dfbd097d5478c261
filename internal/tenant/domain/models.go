package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/davidlhotte/surfaced/internal/plan"
)

// Tenant is one customer store: the unit of quota and data isolation.
type Tenant struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	Name     string       `gorm:"not null" json:"name"`
	Domain   string       `json:"domain"`
	PlanTier plan.Tier    `gorm:"not null;default:'free'" json:"plan_tier"`

	// Denormalized audit summary, overwritten wholesale on each run.
	ProductCount      int        `gorm:"not null;default:0" json:"product_count"`
	AverageAuditScore int        `gorm:"not null;default:0" json:"average_audit_score"`
	LastAuditAt       *time.Time `json:"last_audit_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}
