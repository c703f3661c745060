package textgen

import (
	"github.com/smallbiznis/donare/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.textgen",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Provider {
	if cfg.Textgen.APIKey == "" {
		// No key configured: every call falls through to the deterministic
		// templates in the explain package.
		return &NoOpProvider{}
	}
	return NewAnthropic(cfg.Textgen.APIKey, cfg.Textgen.Model, cfg.Textgen.Timeout)
}
