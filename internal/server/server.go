package server

import (
	"context"
	"net/http"
	"time"

	auditdomain "github.com/davidlhotte/surfaced/internal/audit/domain"
	auditlogdomain "github.com/davidlhotte/surfaced/internal/auditlog/domain"
	"github.com/davidlhotte/surfaced/internal/config"
	obsmiddleware "github.com/davidlhotte/surfaced/internal/observability/logger"
	"github.com/davidlhotte/surfaced/internal/plan"
	visibilitydomain "github.com/davidlhotte/surfaced/internal/visibility/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func registerGin() *gin.Engine {
	return NewEngine()
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	auditSvc      auditdomain.Service
	visibilitySvc visibilitydomain.Service
	auditLogSvc   auditlogdomain.Service
	planSvc       plan.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	AuditSvc      auditdomain.Service
	VisibilitySvc visibilitydomain.Service
	AuditLogSvc   auditlogdomain.Service
	PlanSvc       plan.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		auditSvc:      p.AuditSvc,
		visibilitySvc: p.VisibilitySvc,
		auditLogSvc:   p.AuditLogSvc,
		planSvc:       p.PlanSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")
	v1.GET("/plans/:tier", s.GetPlan)

	tenantScoped := v1.Group("", TenantContext())
	tenantScoped.POST("/audit/runs", s.RunAudit)
	tenantScoped.GET("/audit/results", s.ListAuditResults)
	tenantScoped.POST("/visibility/runs", s.RunVisibility)
	tenantScoped.GET("/visibility/checks", s.ListVisibilityChecks)
	tenantScoped.GET("/activity", s.ListActivity)
}
