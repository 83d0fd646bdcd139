package audit

import (
	"github.com/smallbiznis/bookkeeper/internal/audit/repository"
	"github.com/smallbiznis/bookkeeper/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

// Decorate wraps the application's event publisher with the audit trail.
// It must be passed to fx.New directly so every module sees the wrapped
// publisher.
var Decorate = fx.Decorate(service.DecoratePublisher)
