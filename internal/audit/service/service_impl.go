package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/davidlhotte/surfaced/internal/audit/domain"
	"github.com/davidlhotte/surfaced/internal/audit/scorer"
	auditlogdomain "github.com/davidlhotte/surfaced/internal/auditlog/domain"
	catalogdomain "github.com/davidlhotte/surfaced/internal/catalog/domain"
	"github.com/davidlhotte/surfaced/internal/config"
	"github.com/davidlhotte/surfaced/internal/observability/metrics"
	"github.com/davidlhotte/surfaced/internal/plan"
	tenantdomain "github.com/davidlhotte/surfaced/internal/tenant/domain"
	"github.com/davidlhotte/surfaced/internal/tenantcontext"
	"github.com/davidlhotte/surfaced/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const actionAuditCompleted = "catalog.audit.completed"

type Params struct {
	fx.In

	Cfg         config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	CatalogRepo catalogdomain.Repository
	TenantSvc   tenantdomain.Service
	PlanSvc     plan.Service
	AuditLog    auditlogdomain.Service
	Scoring     *config.ScoringConfigHolder
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	catalogRepo catalogdomain.Repository
	tenantSvc   tenantdomain.Service
	planSvc     plan.Service
	auditLog    auditlogdomain.Service
	scoring     *config.ScoringConfigHolder
	metrics     *metrics.Metrics

	pageCap int
	workers int
}

func New(p Params) domain.Service {
	pageCap := p.Cfg.AuditPageCap
	if pageCap <= 0 {
		pageCap = 250
	}
	workers := p.Cfg.AuditWorkers
	if workers <= 0 {
		workers = 8
	}
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("audit.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		catalogRepo: p.CatalogRepo,
		tenantSvc:   p.TenantSvc,
		planSvc:     p.PlanSvc,
		auditLog:    p.AuditLog,
		scoring:     p.Scoring,
		metrics:     p.Metrics,
		pageCap:     pageCap,
		workers:     workers,
	}
}

// Run audits a tenant's catalog: fetch up to the plan limit, score every
// item, upsert per-item results, recompute the tenant summary wholesale.
// A catalog fetch failure aborts the whole run with nothing persisted.
func (s *Service) Run(ctx context.Context, req domain.RunRequest) (domain.TenantAuditSummary, error) {
	if req.TenantID == 0 {
		return domain.TenantAuditSummary{}, domain.ErrInvalidTenant
	}

	tenant, err := s.tenantSvc.GetByID(ctx, req.TenantID)
	if err != nil {
		if errors.Is(err, tenantdomain.ErrNotFound) {
			return domain.TenantAuditSummary{}, domain.ErrTenantNotFound
		}
		return domain.TenantAuditSummary{}, err
	}

	limits := s.planSvc.LimitsFor(tenant.PlanTier)

	totalItems, err := s.catalogRepo.CountByTenant(ctx, s.db, tenant.ID)
	if err != nil {
		return domain.TenantAuditSummary{}, fmt.Errorf("%w: %v", domain.ErrCatalogFetch, err)
	}

	fetchLimit := limits.MaxCatalogItems
	if fetchLimit > s.pageCap {
		fetchLimit = s.pageCap
	}

	items, err := s.catalogRepo.ListByTenant(ctx, s.db, tenant.ID, fetchLimit)
	if err != nil {
		return domain.TenantAuditSummary{}, fmt.Errorf("%w: %v", domain.ErrCatalogFetch, err)
	}

	now := time.Now().UTC()
	scoringCfg := s.scoring.Get()
	results := make([]*domain.AuditResult, len(items))

	// Scoring is pure and every upsert targets a distinct (tenant, item)
	// key, so the fan-out needs no shared state beyond the result slots.
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)
	for i, item := range items {
		group.Go(func() error {
			scored := scorer.Score(item, scoringCfg)
			result := &domain.AuditResult{
				ID:                s.genID.Generate(),
				TenantID:          tenant.ID,
				ItemID:            item.ID,
				Title:             item.Title,
				Handle:            item.Handle,
				Score:             scored.Score,
				Issues:            scored.Issues,
				HasImages:         scored.HasImages,
				HasDescription:    scored.HasDescription,
				HasMetafields:     scored.HasMetafields,
				DescriptionLength: scored.DescriptionLength,
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			if err := s.repo.Upsert(groupCtx, s.db, result); err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return domain.TenantAuditSummary{}, err
	}

	summary := aggregate(tenant.ID, int(totalItems), results, now)

	if err := s.tenantSvc.RecordAuditStats(ctx, tenant.ID, summary.TotalItems, summary.AverageScore, now); err != nil {
		return domain.TenantAuditSummary{}, err
	}

	if err := s.auditLog.Record(ctx, tenant.ID, actionAuditCompleted, map[string]any{
		"total_items":    summary.TotalItems,
		"audited_items":  summary.AuditedItems,
		"average_score":  summary.AverageScore,
		"critical_count": summary.CriticalCount,
		"warning_count":  summary.WarningCount,
		"info_count":     summary.InfoCount,
	}); err != nil {
		s.log.Warn("audit run completed but log entry failed", zap.Error(err))
	}

	s.metrics.RecordAuditRun(ctx, summary.AuditedItems)
	s.log.Info("catalog audit completed",
		zap.String("tenant_id", tenant.ID.String()),
		zap.Int("audited_items", summary.AuditedItems),
		zap.Int("average_score", summary.AverageScore),
	)

	return summary, nil
}

// aggregate recomputes the tenant summary from scratch. An empty result
// set yields zeros, never a division by zero.
func aggregate(tenantID snowflake.ID, totalItems int, results []*domain.AuditResult, now time.Time) domain.TenantAuditSummary {
	summary := domain.TenantAuditSummary{
		TenantID:    tenantID,
		TotalItems:  totalItems,
		GeneratedAt: now,
	}

	if len(results) == 0 {
		return summary
	}

	sum := 0
	for _, result := range results {
		sum += result.Score
		switch domain.BandForScore(result.Score) {
		case domain.BandCritical:
			summary.CriticalCount++
		case domain.BandWarning:
			summary.WarningCount++
		case domain.BandInfo:
			summary.InfoCount++
		}
	}

	summary.AuditedItems = len(results)
	summary.AverageScore = int(math.Round(float64(sum) / float64(len(results))))
	return summary
}

func (s *Service) ListResults(ctx context.Context, req domain.ListResultsRequest) (domain.ListResultsResponse, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ListResultsResponse{}, domain.ErrInvalidTenant
	}

	var cursor *domain.ResultCursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListResultsResponse{}, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return domain.ListResultsResponse{}, domain.ErrInvalidPageToken
		}
		cursor = &domain.ResultCursor{ID: id, CreatedAt: decoded.CreatedAt}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}

	rows, err := s.repo.ListByTenant(ctx, s.db, tenantID, domain.ListFilter{
		Cursor: cursor,
		Limit:  pageSize,
	})
	if err != nil {
		return domain.ListResultsResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(rows, pageSize, func(row *domain.AuditResult) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        row.ID.String(),
			CreatedAt: row.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(rows) > pageSize {
		rows = rows[:pageSize]
	}

	results := make([]domain.AuditResult, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		results = append(results, *row)
	}

	resp := domain.ListResultsResponse{Results: results}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}
