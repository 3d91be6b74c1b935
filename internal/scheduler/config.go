package scheduler

import "time"

// Config controls the poller interval and batch size.
type Config struct {
	RunInterval time.Duration

	// MinAge keeps the poller away from orders the place call is still
	// working on.
	MinAge    time.Duration
	BatchSize int
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Minute,
		MinAge:      2 * time.Minute,
		BatchSize:   50,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.MinAge <= 0 {
		c.MinAge = defaults.MinAge
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	return c
}
