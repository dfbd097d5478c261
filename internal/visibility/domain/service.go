package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/davidlhotte/surfaced/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, result *CheckResult) error
	CountSince(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, since time.Time) (int64, error)
	ListByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListFilter) ([]*CheckResult, error)
}

type ListFilter struct {
	Cursor *CheckCursor
	Limit  int
}

type CheckCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type RunRequest struct {
	TenantID snowflake.ID
	// Queries overrides the generated probe set when non-empty.
	Queries []string
}

type ListChecksRequest struct {
	pagination.Pagination
}

type ListChecksResponse struct {
	pagination.PageInfo
	Checks []CheckResult `json:"checks"`
}

type Service interface {
	Run(ctx context.Context, req RunRequest) (CheckSummary, error)
	ListChecks(ctx context.Context, req ListChecksRequest) (ListChecksResponse, error)
}

var (
	ErrInvalidTenant    = errors.New("invalid_tenant")
	ErrTenantNotFound   = errors.New("tenant_not_found")
	ErrQuotaExceeded    = errors.New("visibility_quota_exceeded")
	ErrRunInProgress    = errors.New("visibility_run_in_progress")
	ErrNoProviders      = errors.New("no_providers_configured")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
