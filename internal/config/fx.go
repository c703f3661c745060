package config

import "go.uber.org/fx"

// Module wires application and risk configuration.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(LoadRiskConfig),
)
