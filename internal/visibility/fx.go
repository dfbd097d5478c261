package visibility

import (
	"github.com/davidlhotte/surfaced/internal/visibility/repository"
	"github.com/davidlhotte/surfaced/internal/visibility/service"
	"go.uber.org/fx"
)

var Module = fx.Module("visibility.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
