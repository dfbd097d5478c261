package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditlogdomain "github.com/davidlhotte/surfaced/internal/auditlog/domain"
	catalogdomain "github.com/davidlhotte/surfaced/internal/catalog/domain"
	"github.com/davidlhotte/surfaced/internal/clock"
	"github.com/davidlhotte/surfaced/internal/config"
	"github.com/davidlhotte/surfaced/internal/observability/metrics"
	"github.com/davidlhotte/surfaced/internal/plan"
	"github.com/davidlhotte/surfaced/internal/ratelimit"
	tenantdomain "github.com/davidlhotte/surfaced/internal/tenant/domain"
	"github.com/davidlhotte/surfaced/internal/tenantcontext"
	"github.com/davidlhotte/surfaced/internal/visibility/analyzer"
	"github.com/davidlhotte/surfaced/internal/visibility/domain"
	"github.com/davidlhotte/surfaced/internal/visibility/provider"
	"github.com/davidlhotte/surfaced/internal/visibility/query"
	"github.com/davidlhotte/surfaced/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	actionCheckCompleted = "visibility.check.completed"

	// maxQueriesPerRun caps a single run regardless of remaining quota.
	maxQueriesPerRun = 3
)

type Params struct {
	fx.In

	Cfg       config.Config
	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Catalog   catalogdomain.Repository
	TenantSvc tenantdomain.Service
	PlanSvc   plan.Service
	AuditLog  auditlogdomain.Service
	Providers *provider.Registry
	Scoring   *config.ScoringConfigHolder
	RunLock   *ratelimit.RunLocker `optional:"true"`
	Metrics   *metrics.Metrics     `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	catalog   catalogdomain.Repository
	tenantSvc tenantdomain.Service
	planSvc   plan.Service
	auditLog  auditlogdomain.Service
	providers *provider.Registry
	scoring   *config.ScoringConfigHolder
	runLock   *ratelimit.RunLocker
	metrics   *metrics.Metrics

	probeDelay time.Duration
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("visibility.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		catalog:    p.Catalog,
		tenantSvc:  p.TenantSvc,
		planSvc:    p.PlanSvc,
		auditLog:   p.AuditLog,
		providers:  p.Providers,
		scoring:    p.Scoring,
		runLock:    p.RunLock,
		metrics:    p.Metrics,
		probeDelay: p.Cfg.ProbeDelay,
	}
}

// Run probes the configured answer engines for one tenant. Calls go out
// strictly one at a time with a fixed pacing delay between them; a
// failed call is logged and skipped, it never aborts the run and never
// consumes quota. Rows are append-only, the monthly quota is the count
// of rows since the start of the current UTC month.
func (s *Service) Run(ctx context.Context, req domain.RunRequest) (domain.CheckSummary, error) {
	if req.TenantID == 0 {
		return domain.CheckSummary{}, domain.ErrInvalidTenant
	}

	tenant, err := s.tenantSvc.GetByID(ctx, req.TenantID)
	if err != nil {
		if errors.Is(err, tenantdomain.ErrNotFound) {
			return domain.CheckSummary{}, domain.ErrTenantNotFound
		}
		return domain.CheckSummary{}, err
	}
	if strings.TrimSpace(tenant.Name) == "" {
		return domain.CheckSummary{}, domain.ErrInvalidTenant
	}
	if len(s.providers.Providers()) == 0 {
		return domain.CheckSummary{}, domain.ErrNoProviders
	}

	token, acquired, err := s.runLock.Acquire(ctx, tenant.ID)
	if err != nil {
		return domain.CheckSummary{}, err
	}
	if !acquired {
		return domain.CheckSummary{}, domain.ErrRunInProgress
	}
	defer s.runLock.Release(ctx, tenant.ID, token)

	now := s.clock.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	used, err := s.repo.CountSince(ctx, s.db, tenant.ID, monthStart)
	if err != nil {
		return domain.CheckSummary{}, err
	}

	limits := s.planSvc.LimitsFor(tenant.PlanTier)
	remaining := limits.MonthlyVisibilityChecks - int(used)
	if remaining <= 0 {
		s.metrics.RecordQuotaDenied(ctx)
		s.log.Info("visibility quota exhausted",
			zap.String("tenant_id", tenant.ID.String()),
			zap.Int64("checks_this_month", used),
			zap.Int("monthly_limit", limits.MonthlyVisibilityChecks),
		)
		return domain.CheckSummary{}, domain.ErrQuotaExceeded
	}

	queries := req.Queries
	if len(queries) == 0 {
		hint, err := s.catalog.MostCommonProductType(ctx, s.db, tenant.ID)
		if err != nil {
			s.log.Warn("category hint lookup failed, using brand queries only", zap.Error(err))
			hint = ""
		}
		queries = query.Build(tenant.Name, hint)
	}
	if len(queries) > remaining {
		queries = queries[:remaining]
	}
	if len(queries) > maxQueriesPerRun {
		queries = queries[:maxQueriesPerRun]
	}

	scoringCfg := s.scoring.Get()
	summary := domain.CheckSummary{
		TenantID:    tenant.ID,
		GeneratedAt: now,
	}
	seen := make(map[string]struct{})

	for i, q := range queries {
		if i > 0 {
			if err := s.pace(ctx); err != nil {
				return domain.CheckSummary{}, err
			}
		}

		prov, ok := s.providers.Pick(i)
		if !ok {
			return domain.CheckSummary{}, domain.ErrNoProviders
		}

		raw, err := prov.Ask(ctx, q)
		if err != nil {
			s.metrics.RecordProviderFailure(ctx, string(prov.Platform()))
			s.log.Warn("provider call failed, skipping query",
				zap.String("tenant_id", tenant.ID.String()),
				zap.String("platform", string(prov.Platform())),
				zap.String("query", q),
				zap.Error(err),
			)
			continue
		}

		analysis := analyzer.Analyze(raw, tenant.Name, tenant.Domain, scoringCfg.Competitors, scoringCfg.Positive)

		result := &domain.CheckResult{
			ID:              s.genID.Generate(),
			TenantID:        tenant.ID,
			Platform:        prov.Platform(),
			Query:           q,
			IsMentioned:     analysis.Mentioned,
			MentionContext:  analysis.MentionContext,
			Position:        analysis.Position,
			Competitors:     analysis.Competitors,
			ResponseQuality: analysis.Quality,
			RawResponse:     raw,
			CreatedAt:       s.clock.Now().UTC(),
		}
		if err := s.repo.Insert(ctx, s.db, result); err != nil {
			return domain.CheckSummary{}, err
		}

		summary.TotalChecks++
		if analysis.Mentioned {
			summary.MentionedCount++
		} else {
			summary.NotMentionedCount++
		}
		for _, competitor := range analysis.Competitors {
			if _, dup := seen[competitor]; dup {
				continue
			}
			seen[competitor] = struct{}{}
			summary.Competitors = append(summary.Competitors, competitor)
		}

		s.metrics.RecordVisibilityCheck(ctx, string(prov.Platform()), analysis.Mentioned)
	}

	sort.Strings(summary.Competitors)

	if err := s.auditLog.Record(ctx, tenant.ID, actionCheckCompleted, map[string]any{
		"queries_run":     summary.TotalChecks,
		"mentioned_count": summary.MentionedCount,
	}); err != nil {
		s.log.Warn("visibility run completed but log entry failed", zap.Error(err))
	}

	s.log.Info("visibility run completed",
		zap.String("tenant_id", tenant.ID.String()),
		zap.Int("total_checks", summary.TotalChecks),
		zap.Int("mentioned_count", summary.MentionedCount),
	)

	return summary, nil
}

func (s *Service) pace(ctx context.Context) error {
	if s.probeDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.probeDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) ListChecks(ctx context.Context, req domain.ListChecksRequest) (domain.ListChecksResponse, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ListChecksResponse{}, domain.ErrInvalidTenant
	}

	var cursor *domain.CheckCursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListChecksResponse{}, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return domain.ListChecksResponse{}, domain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339Nano, decoded.CreatedAt)
		if err != nil {
			return domain.ListChecksResponse{}, domain.ErrInvalidPageToken
		}
		cursor = &domain.CheckCursor{ID: id, CreatedAt: createdAt}
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
		return domain.ListChecksResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(rows, pageSize, func(row *domain.CheckResult) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        row.ID.String(),
			CreatedAt: row.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(rows) > pageSize {
		rows = rows[:pageSize]
	}

	checks := make([]domain.CheckResult, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		checks = append(checks, *row)
	}

	resp := domain.ListChecksResponse{Checks: checks}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}
