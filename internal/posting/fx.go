package posting

import "go.uber.org/fx"

var Module = fx.Module("posting.engine",
	fx.Provide(NewEngine),
)
