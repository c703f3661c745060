package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// RiskConfig is the static rule set for the risk scoring engine. It is read once
// at process start; changing risk.yml requires a restart.
type RiskConfig struct {
	BaseScore         float64       `mapstructure:"baseScore"`
	BlockThreshold    float64       `mapstructure:"blockThreshold"`
	AmountThreshold   float64       `mapstructure:"amountThreshold"`
	AmountIncrement   float64       `mapstructure:"amountIncrement"`
	SuspiciousDomains []string      `mapstructure:"suspiciousDomains"`
	DomainIncrement   float64       `mapstructure:"domainIncrement"`
	VelocityThreshold int           `mapstructure:"velocityThreshold"`
	VelocityIncrement float64       `mapstructure:"velocityIncrement"`
	VelocityWindow    time.Duration `mapstructure:"velocityWindow"`
	GeoIncrement      float64       `mapstructure:"geoIncrement"`
	// HighRiskCountry is a flat increment on top of the geolocation mismatch rule.
	// It predates the documented heuristics and is kept for behavioral parity.
	HighRiskCountry   string  `mapstructure:"highRiskCountry"`
	HighRiskIncrement float64 `mapstructure:"highRiskIncrement"`
}

func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		BaseScore:         0.1,
		BlockThreshold:    0.7,
		AmountThreshold:   1000,
		AmountIncrement:   0.3,
		SuspiciousDomains: []string{"test.com", "fraud.com", ".ru"},
		DomainIncrement:   0.4,
		VelocityThreshold: 3,
		VelocityIncrement: 0.3,
		VelocityWindow:    time.Hour,
		GeoIncrement:      0.2,
		HighRiskCountry:   "RU",
		HighRiskIncrement: 0.2,
	}
}

// LoadRiskConfig reads risk.yml if present, falling back to coded defaults.
func LoadRiskConfig() (RiskConfig, error) {
	v := viper.New()

	v.SetConfigName("risk")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/donare")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DONARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultRiskConfig()
	v.SetDefault("risk.baseScore", defaults.BaseScore)
	v.SetDefault("risk.blockThreshold", defaults.BlockThreshold)
	v.SetDefault("risk.amountThreshold", defaults.AmountThreshold)
	v.SetDefault("risk.amountIncrement", defaults.AmountIncrement)
	v.SetDefault("risk.suspiciousDomains", defaults.SuspiciousDomains)
	v.SetDefault("risk.domainIncrement", defaults.DomainIncrement)
	v.SetDefault("risk.velocityThreshold", defaults.VelocityThreshold)
	v.SetDefault("risk.velocityIncrement", defaults.VelocityIncrement)
	v.SetDefault("risk.velocityWindow", defaults.VelocityWindow)
	v.SetDefault("risk.geoIncrement", defaults.GeoIncrement)
	v.SetDefault("risk.highRiskCountry", defaults.HighRiskCountry)
	v.SetDefault("risk.highRiskIncrement", defaults.HighRiskIncrement)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return RiskConfig{}, err
		}
	}

	var cfg RiskConfig
	if err := v.UnmarshalKey("risk", &cfg); err != nil {
		return RiskConfig{}, err
	}
	if err := validateRiskConfig(cfg); err != nil {
		return RiskConfig{}, err
	}
	return cfg, nil
}

func validateRiskConfig(cfg RiskConfig) error {
	if cfg.BaseScore < 0 || cfg.BaseScore > 1 {
		return errors.New("risk: baseScore must be in [0,1]")
	}
	if cfg.BlockThreshold <= 0 || cfg.BlockThreshold > 1 {
		return errors.New("risk: blockThreshold must be in (0,1]")
	}
	if cfg.AmountThreshold <= 0 {
		return errors.New("risk: amountThreshold must be positive")
	}
	if cfg.VelocityThreshold <= 0 {
		return errors.New("risk: velocityThreshold must be positive")
	}
	if cfg.VelocityWindow <= 0 {
		return errors.New("risk: velocityWindow must be positive")
	}
	return nil
}
