package auditlog

import (
	"github.com/davidlhotte/surfaced/internal/auditlog/repository"
	"github.com/davidlhotte/surfaced/internal/auditlog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auditlog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
