package config

import (
	"time"

	"github.com/tokenpulse/tokenpulse/internal/model"
)

// Config is the root configuration for an aggregator instance.
type Config struct {
	Instance  InstanceConfig  `yaml:"instance"`
	Server    ServerConfig    `yaml:"server"`
	Redis     RedisConfig     `yaml:"redis"`
	Sources   SourcesConfig   `yaml:"sources"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Symbols   []model.Symbol  `yaml:"symbols"`
	Realtime  RealtimeConfig  `yaml:"realtime"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// InstanceConfig identifies this aggregator.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// RedisConfig holds the cache store connection.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SourcesConfig holds upstream data source settings.
type SourcesConfig struct {
	DexScreenerURL string        `yaml:"dex_screener_url"`
	JupiterURL     string        `yaml:"jupiter_url"`
	APIKey         string        `yaml:"api_key"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
}

// SchedulerConfig holds the aggregation and ticker cadences.
type SchedulerConfig struct {
	AggregateInterval time.Duration `yaml:"aggregate_interval"`
	TickerInterval    time.Duration `yaml:"ticker_interval"`
	TickerThreshold   float64       `yaml:"ticker_threshold"`
	Concurrency       int           `yaml:"concurrency"`
}

// RealtimeConfig selects the symbols the high-frequency ticker watches.
// They must be a subset of the tracked symbol list.
type RealtimeConfig struct {
	Symbols []string `yaml:"symbols"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// RealtimeSymbols resolves the realtime names against the tracked seed
// list, preserving seed-list mint addresses.
func (c *Config) RealtimeSymbols() []model.Symbol {
	byName := make(map[string]model.Symbol, len(c.Symbols))
	for _, s := range c.Symbols {
		byName[s.Name] = s
	}

	out := make([]model.Symbol, 0, len(c.Realtime.Symbols))
	for _, name := range c.Realtime.Symbols {
		if s, ok := byName[name]; ok {
			out = append(out, s)
		}
	}
	return out
}
