package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Redis.Addr == "" {
		return errors.New("redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must be >= 0, got %d", c.Redis.DB)
	}

	if c.Sources.MaxRetries < 1 {
		return errors.New("sources.max_retries must be >= 1")
	}

	if c.Scheduler.AggregateInterval <= 0 {
		return errors.New("scheduler.aggregate_interval must be positive")
	}
	if c.Scheduler.TickerInterval <= 0 {
		return errors.New("scheduler.ticker_interval must be positive")
	}
	if c.Scheduler.TickerThreshold <= 0 {
		return errors.New("scheduler.ticker_threshold must be positive")
	}
	if c.Scheduler.Concurrency < 1 {
		return errors.New("scheduler.concurrency must be >= 1")
	}

	if len(c.Symbols) == 0 {
		return errors.New("symbols must name at least one tracked token")
	}
	seen := make(map[string]bool, len(c.Symbols))
	for i, s := range c.Symbols {
		if s.Name == "" {
			return fmt.Errorf("symbols[%d].name is required", i)
		}
		if s.Mint == "" {
			return fmt.Errorf("symbols[%d].mint is required (symbol %s)", i, s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("symbols[%d]: duplicate symbol %s", i, s.Name)
		}
		seen[s.Name] = true
	}

	for i, name := range c.Realtime.Symbols {
		if !seen[name] {
			return fmt.Errorf("realtime.symbols[%d]: %s is not in the tracked symbol list", i, name)
		}
	}

	return nil
}
