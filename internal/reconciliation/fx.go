package reconciliation

import (
	"github.com/smallbiznis/bookkeeper/internal/reconciliation/repository"
	"github.com/smallbiznis/bookkeeper/internal/reconciliation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reconciliation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
