package donation

import (
	"github.com/smallbiznis/donare/internal/donation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("donation.service",
	fx.Provide(service.ProvideRepository),
	fx.Provide(service.NewService),
)
