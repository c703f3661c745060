package explain

import "go.uber.org/fx"

var Module = fx.Module("explain.service",
	fx.Provide(NewService),
)
