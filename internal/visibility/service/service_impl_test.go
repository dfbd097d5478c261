package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditlogdomain "github.com/davidlhotte/surfaced/internal/auditlog/domain"
	auditlogrepo "github.com/davidlhotte/surfaced/internal/auditlog/repository"
	auditlogservice "github.com/davidlhotte/surfaced/internal/auditlog/service"
	catalogdomain "github.com/davidlhotte/surfaced/internal/catalog/domain"
	catalogrepo "github.com/davidlhotte/surfaced/internal/catalog/repository"
	"github.com/davidlhotte/surfaced/internal/clock"
	"github.com/davidlhotte/surfaced/internal/config"
	"github.com/davidlhotte/surfaced/internal/plan"
	tenantdomain "github.com/davidlhotte/surfaced/internal/tenant/domain"
	tenantrepo "github.com/davidlhotte/surfaced/internal/tenant/repository"
	tenantservice "github.com/davidlhotte/surfaced/internal/tenant/service"
	"github.com/davidlhotte/surfaced/internal/tenantcontext"
	"github.com/davidlhotte/surfaced/internal/visibility/domain"
	"github.com/davidlhotte/surfaced/internal/visibility/provider"
	visibilityrepo "github.com/davidlhotte/surfaced/internal/visibility/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubProvider struct {
	platform  domain.Platform
	responses map[string]string
	err       error
	calls     []string
}

func (p *stubProvider) Platform() domain.Platform {
	return p.platform
}

func (p *stubProvider) Ask(ctx context.Context, query string) (string, error) {
	p.calls = append(p.calls, query)
	if p.err != nil {
		return "", p.err
	}
	if resp, ok := p.responses[query]; ok {
		return resp, nil
	}
	return "Nothing specific to report.", nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&tenantdomain.Tenant{},
		&catalogdomain.CatalogItem{},
		&domain.CheckResult{},
		&auditlogdomain.Entry{},
	)
	assert.NoError(t, err)

	return db
}

func newVisibilityService(t *testing.T, db *gorm.DB, clk clock.Clock, providers ...provider.Provider) (domain.Service, *snowflake.Node) {
	t.Helper()

	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)
	logger := zap.NewNop()

	auditLog := auditlogservice.New(auditlogservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Repo:  auditlogrepo.Provide(),
	})
	tenantSvc := tenantservice.New(tenantservice.Params{
		DB:   db,
		Log:  logger,
		Repo: tenantrepo.Provide(),
	})

	svc := New(Params{
		Cfg:       config.Config{ProbeDelay: 0},
		DB:        db,
		Log:       logger,
		GenID:     node,
		Clock:     clk,
		Repo:      visibilityrepo.Provide(),
		Catalog:   catalogrepo.Provide(),
		TenantSvc: tenantSvc,
		PlanSvc:   plan.New(),
		AuditLog:  auditLog,
		Providers: provider.NewStaticRegistry(providers...),
		Scoring:   config.NewStaticScoringHolder(config.DefaultScoringConfig()),
	})

	return svc, node
}

func seedTenant(t *testing.T, db *gorm.DB, node *snowflake.Node, tier plan.Tier) tenantdomain.Tenant {
	t.Helper()

	tenant := tenantdomain.Tenant{
		ID:       node.Generate(),
		Name:     "Acme Corp",
		Domain:   "acmecorp.com",
		PlanTier: tier,
	}
	assert.NoError(t, db.Create(&tenant).Error)
	return tenant
}

func TestVisibilityRun_PersistsAndSummarizes(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))

	mentioned := "1. Acme Corp is a top choice. 2. Amazon also sells these."
	stub := &stubProvider{
		platform: domain.PlatformOpenAI,
		responses: map[string]string{
			"q1": mentioned,
			"q2": "Walmart has a wide selection.",
		},
	}
	svc, node := newVisibilityService(t, db, clk, stub)
	tenant := seedTenant(t, db, node, plan.TierFree)

	summary, err := svc.Run(context.Background(), domain.RunRequest{
		TenantID: tenant.ID,
		Queries:  []string{"q1", "q2"},
	})
	assert.NoError(t, err)

	assert.Equal(t, 2, summary.TotalChecks)
	assert.Equal(t, 1, summary.MentionedCount)
	assert.Equal(t, 1, summary.NotMentionedCount)
	assert.ElementsMatch(t, []string{"Amazon", "Walmart"}, summary.Competitors)

	var rows []domain.CheckResult
	assert.NoError(t, db.Where("tenant_id = ?", tenant.ID).Order("id").Find(&rows).Error)
	assert.Len(t, rows, 2)
	assert.True(t, rows[0].IsMentioned)
	if assert.NotNil(t, rows[0].Position) {
		assert.Equal(t, 1, *rows[0].Position)
	}
	assert.Equal(t, domain.QualityGood, rows[0].ResponseQuality)
	assert.Equal(t, mentioned, rows[0].RawResponse)
	assert.False(t, rows[1].IsMentioned)

	var entries int64
	assert.NoError(t, db.Model(&auditlogdomain.Entry{}).
		Where("tenant_id = ? AND action = ?", tenant.ID, "visibility.check.completed").
		Count(&entries).Error)
	assert.EqualValues(t, 1, entries)
}

func TestVisibilityRun_QuotaExceededPersistsNothing(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))
	stub := &stubProvider{platform: domain.PlatformOpenAI}
	svc, node := newVisibilityService(t, db, clk, stub)
	tenant := seedTenant(t, db, node, plan.TierFree)

	// Exhaust the free tier's five monthly checks inside the current month.
	for i := 0; i < 5; i++ {
		assert.NoError(t, db.Create(&domain.CheckResult{
			ID:        node.Generate(),
			TenantID:  tenant.ID,
			Platform:  domain.PlatformOpenAI,
			Query:     fmt.Sprintf("old-%d", i),
			CreatedAt: clk.Now().Add(-time.Hour),
		}).Error)
	}

	_, err := svc.Run(context.Background(), domain.RunRequest{TenantID: tenant.ID, Queries: []string{"q"}})
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)

	var rows int64
	assert.NoError(t, db.Model(&domain.CheckResult{}).Where("tenant_id = ?", tenant.ID).Count(&rows).Error)
	assert.EqualValues(t, 5, rows)
	assert.Empty(t, stub.calls)
}

func TestVisibilityRun_LastMonthDoesNotCountAgainstQuota(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, time.March, 1, 0, 30, 0, 0, time.UTC))
	stub := &stubProvider{platform: domain.PlatformOpenAI}
	svc, node := newVisibilityService(t, db, clk, stub)
	tenant := seedTenant(t, db, node, plan.TierFree)

	for i := 0; i < 5; i++ {
		assert.NoError(t, db.Create(&domain.CheckResult{
			ID:        node.Generate(),
			TenantID:  tenant.ID,
			Platform:  domain.PlatformOpenAI,
			Query:     fmt.Sprintf("feb-%d", i),
			CreatedAt: time.Date(2026, time.February, 27, 9, 0, 0, 0, time.UTC),
		}).Error)
	}

	summary, err := svc.Run(context.Background(), domain.RunRequest{TenantID: tenant.ID, Queries: []string{"q"}})
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.TotalChecks)
}

func TestVisibilityRun_TruncatesToRemainingQuota(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))
	stub := &stubProvider{platform: domain.PlatformOpenAI}
	svc, node := newVisibilityService(t, db, clk, stub)
	tenant := seedTenant(t, db, node, plan.TierFree)

	for i := 0; i < 4; i++ {
		assert.NoError(t, db.Create(&domain.CheckResult{
			ID:        node.Generate(),
			TenantID:  tenant.ID,
			Platform:  domain.PlatformOpenAI,
			Query:     fmt.Sprintf("old-%d", i),
			CreatedAt: clk.Now().Add(-time.Hour),
		}).Error)
	}

	summary, err := svc.Run(context.Background(), domain.RunRequest{
		TenantID: tenant.ID,
		Queries:  []string{"q1", "q2", "q3"},
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.TotalChecks)
	assert.Equal(t, []string{"q1"}, stub.calls)
}

func TestVisibilityRun_CapsAtThreeQueries(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))
	stub := &stubProvider{platform: domain.PlatformOpenAI}
	svc, node := newVisibilityService(t, db, clk, stub)
	tenant := seedTenant(t, db, node, plan.TierFree)

	summary, err := svc.Run(context.Background(), domain.RunRequest{
		TenantID: tenant.ID,
		Queries:  []string{"q1", "q2", "q3", "q4", "q5"},
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, summary.TotalChecks)
	assert.Equal(t, []string{"q1", "q2", "q3"}, stub.calls)
}

func TestVisibilityRun_ProviderFailureSkipsQuery(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))

	healthy := &stubProvider{platform: domain.PlatformOpenAI}
	broken := &stubProvider{platform: domain.PlatformPerplexity, err: errors.New("upstream timeout")}
	svc, node := newVisibilityService(t, db, clk, healthy, broken)
	tenant := seedTenant(t, db, node, plan.TierFree)

	summary, err := svc.Run(context.Background(), domain.RunRequest{
		TenantID: tenant.ID,
		Queries:  []string{"q1", "q2", "q3"},
	})
	assert.NoError(t, err)

	// Round-robin sends q1 and q3 to the healthy provider, q2 fails and
	// is skipped without consuming quota.
	assert.Equal(t, 2, summary.TotalChecks)

	var rows int64
	assert.NoError(t, db.Model(&domain.CheckResult{}).Where("tenant_id = ?", tenant.ID).Count(&rows).Error)
	assert.EqualValues(t, 2, rows)
}

func TestVisibilityRun_RoundRobinAcrossPlatforms(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))

	first := &stubProvider{platform: domain.PlatformOpenAI}
	second := &stubProvider{platform: domain.PlatformPerplexity}
	svc, node := newVisibilityService(t, db, clk, first, second)
	tenant := seedTenant(t, db, node, plan.TierFree)

	_, err := svc.Run(context.Background(), domain.RunRequest{
		TenantID: tenant.ID,
		Queries:  []string{"q1", "q2", "q3"},
	})
	assert.NoError(t, err)

	assert.Equal(t, []string{"q1", "q3"}, first.calls)
	assert.Equal(t, []string{"q2"}, second.calls)
}

func TestVisibilityRun_TenantNotFound(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))
	stub := &stubProvider{platform: domain.PlatformOpenAI}
	svc, node := newVisibilityService(t, db, clk, stub)

	_, err := svc.Run(context.Background(), domain.RunRequest{TenantID: node.Generate(), Queries: []string{"q"}})
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

func TestVisibilityRun_NoProviders(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))
	svc, node := newVisibilityService(t, db, clk)
	tenant := seedTenant(t, db, node, plan.TierFree)

	_, err := svc.Run(context.Background(), domain.RunRequest{TenantID: tenant.ID, Queries: []string{"q"}})
	assert.ErrorIs(t, err, domain.ErrNoProviders)
}

func TestVisibilityRun_BuildsQueriesFromCatalog(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))
	stub := &stubProvider{platform: domain.PlatformOpenAI}
	svc, node := newVisibilityService(t, db, clk, stub)
	tenant := seedTenant(t, db, node, plan.TierFree)

	for i := 0; i < 2; i++ {
		assert.NoError(t, db.Create(&catalogdomain.CatalogItem{
			ID:          node.Generate(),
			TenantID:    tenant.ID,
			Handle:      fmt.Sprintf("item-%d", i),
			Title:       "Trail Runner",
			ProductType: "Running Shoes",
		}).Error)
	}

	summary, err := svc.Run(context.Background(), domain.RunRequest{TenantID: tenant.ID})
	assert.NoError(t, err)

	// Six generated queries truncate to the per-run cap of three, and
	// the category-generic ones lead.
	assert.Equal(t, 3, summary.TotalChecks)
	assert.Equal(t, []string{
		"What are the best Running Shoes products to buy?",
		"Which online stores sell good Running Shoes?",
		"Top rated Running Shoes brands",
	}, stub.calls)
}

func TestListChecks_Pagination(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))
	stub := &stubProvider{platform: domain.PlatformOpenAI}
	svc, node := newVisibilityService(t, db, clk, stub)
	tenant := seedTenant(t, db, node, plan.TierStarter)

	for i := 0; i < 5; i++ {
		assert.NoError(t, db.Create(&domain.CheckResult{
			ID:        node.Generate(),
			TenantID:  tenant.ID,
			Platform:  domain.PlatformOpenAI,
			Query:     fmt.Sprintf("q-%d", i),
			CreatedAt: clk.Now().Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	ctx := tenantcontext.WithTenantID(context.Background(), tenant.ID)

	req := domain.ListChecksRequest{}
	req.PageSize = 3
	page, err := svc.ListChecks(ctx, req)
	assert.NoError(t, err)
	assert.Len(t, page.Checks, 3)
	assert.True(t, page.HasMore)

	req.PageToken = page.NextPageToken
	next, err := svc.ListChecks(ctx, req)
	assert.NoError(t, err)
	assert.Len(t, next.Checks, 2)
	assert.False(t, next.HasMore)

	// Newest first.
	assert.Equal(t, "q-4", page.Checks[0].Query)
}

func TestListChecks_RequiresTenantContext(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))
	svc, _ := newVisibilityService(t, db, clk)

	_, err := svc.ListChecks(context.Background(), domain.ListChecksRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTenant)
}
