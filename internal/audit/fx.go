package audit

import (
	"github.com/davidlhotte/surfaced/internal/audit/repository"
	"github.com/davidlhotte/surfaced/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
