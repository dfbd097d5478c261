package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/davidlhotte/surfaced/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("tenant.service"),
		repo: p.Repo,
	}
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Tenant, error) {
	if id == 0 {
		return domain.Tenant{}, domain.ErrInvalidID
	}

	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tenant{}, err
	}
	if tenant == nil {
		return domain.Tenant{}, domain.ErrNotFound
	}
	return *tenant, nil
}

func (s *Service) RecordAuditStats(ctx context.Context, id snowflake.ID, productCount, averageScore int, lastAuditAt time.Time) error {
	if id == 0 {
		return domain.ErrInvalidID
	}
	return s.repo.UpdateAuditStats(ctx, s.db, id, productCount, averageScore, lastAuditAt.UTC())
}
