package scheduler

import (
	"time"

	"github.com/smallbiznis/donare/internal/config"
)

// Config controls the billing scheduler's interval, batching and the simulated
// charge outcome distribution.
type Config struct {
	Interval           time.Duration
	BatchSize          int
	SuccessProbability float64
	BillingDelay       time.Duration
	AutoStart          bool
}

func DefaultConfig() Config {
	return Config{
		Interval:           time.Minute,
		BatchSize:          5,
		SuccessProbability: 0.9,
		BillingDelay:       25 * time.Millisecond,
		AutoStart:          true,
	}
}

func ProvideConfig(appCfg config.Config) Config {
	return Config{
		Interval:           appCfg.Scheduler.Interval,
		BatchSize:          appCfg.Scheduler.BatchSize,
		SuccessProbability: appCfg.Scheduler.SuccessProbability,
		BillingDelay:       appCfg.Scheduler.BillingDelay,
		AutoStart:          appCfg.Scheduler.AutoStart,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = defaults.Interval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.SuccessProbability <= 0 || c.SuccessProbability > 1 {
		c.SuccessProbability = defaults.SuccessProbability
	}
	if c.BillingDelay < 0 {
		c.BillingDelay = defaults.BillingDelay
	}
	return c
}
