package tenant

import (
	"github.com/davidlhotte/surfaced/internal/tenant/repository"
	"github.com/davidlhotte/surfaced/internal/tenant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
