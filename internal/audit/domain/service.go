package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/davidlhotte/surfaced/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, result *AuditResult) error
	ListByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListFilter) ([]*AuditResult, error)
}

type ListFilter struct {
	Cursor *ResultCursor
	Limit  int
}

type ResultCursor struct {
	ID        snowflake.ID
	CreatedAt string
}

type RunRequest struct {
	TenantID snowflake.ID
}

type ListResultsRequest struct {
	pagination.Pagination
}

type ListResultsResponse struct {
	pagination.PageInfo
	Results []AuditResult `json:"results"`
}

type Service interface {
	Run(ctx context.Context, req RunRequest) (TenantAuditSummary, error)
	ListResults(ctx context.Context, req ListResultsRequest) (ListResultsResponse, error)
}

var (
	ErrInvalidTenant    = errors.New("invalid_tenant")
	ErrTenantNotFound   = errors.New("tenant_not_found")
	ErrCatalogFetch     = errors.New("catalog_fetch_failed")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
