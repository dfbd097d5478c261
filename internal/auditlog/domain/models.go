package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/davidlhotte/surfaced/pkg/db/pagination"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry is an immutable record of a completed run, consumed by trend
// charts and ROI aggregation.
type Entry struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID  snowflake.ID      `gorm:"not null;index" json:"tenant_id"`
	Action    string            `gorm:"not null" json:"action"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Entry) TableName() string {
	return "audit_log_entries"
}

type EntryCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListFilter struct {
	TenantID snowflake.ID
	Action   string
	Cursor   *EntryCursor
	Limit    int
}

type ListRequest struct {
	pagination.Pagination
	Action string
}

type ListResponse struct {
	pagination.PageInfo
	Entries []Entry `json:"entries"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *Entry) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Entry, error)
}

type Service interface {
	Record(ctx context.Context, tenantID snowflake.ID, action string, metadata map[string]any) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidTenant    = errors.New("invalid_tenant")
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
