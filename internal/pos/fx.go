package pos

import (
	"github.com/smallbiznis/bookkeeper/internal/pos/repository"
	"github.com/smallbiznis/bookkeeper/internal/pos/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pos.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
