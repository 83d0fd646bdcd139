package account

import (
	"github.com/smallbiznis/bookkeeper/internal/account/repository"
	"github.com/smallbiznis/bookkeeper/internal/account/service"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewResolver),
	fx.Provide(service.NewService),
)
