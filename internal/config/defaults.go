package config

import (
	"time"

	"github.com/tokenpulse/tokenpulse/internal/model"
)

// Default values for optional configuration fields.
const (
	DefaultServerPort        = 8080
	DefaultRedisAddr         = "localhost:6379"
	DefaultDexScreenerURL    = "https://api.dexscreener.com/latest/dex/tokens"
	DefaultJupiterURL        = "https://price.jup.ag/v4/price"
	DefaultSourceTimeout     = 10 * time.Second
	DefaultMaxRetries        = 3
	DefaultAggregateInterval = 5 * time.Minute
	DefaultTickerInterval    = 5 * time.Second
	DefaultTickerThreshold   = 0.0005
	DefaultConcurrency       = 4
	DefaultLogLevel          = "info"
)

// defaultSymbols is the seed list used when the config names none.
func defaultSymbols() []model.Symbol {
	return []model.Symbol{
		{Name: "SOL", Mint: "So11111111111111111111111111111111111111112"},
		{Name: "JUP", Mint: "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN"},
		{Name: "BONK", Mint: "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"},
		{Name: "WEN", Mint: "WENWENvqqNya429ubCdR81ZmD69brwQaaBYY6p3LCpk"},
	}
}

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}

	// Redis defaults
	if c.Redis.Addr == "" {
		c.Redis.Addr = DefaultRedisAddr
	}

	// Source defaults
	if c.Sources.DexScreenerURL == "" {
		c.Sources.DexScreenerURL = DefaultDexScreenerURL
	}
	if c.Sources.JupiterURL == "" {
		c.Sources.JupiterURL = DefaultJupiterURL
	}
	if c.Sources.Timeout == 0 {
		c.Sources.Timeout = DefaultSourceTimeout
	}
	if c.Sources.MaxRetries == 0 {
		c.Sources.MaxRetries = DefaultMaxRetries
	}

	// Scheduler defaults
	if c.Scheduler.AggregateInterval == 0 {
		c.Scheduler.AggregateInterval = DefaultAggregateInterval
	}
	if c.Scheduler.TickerInterval == 0 {
		c.Scheduler.TickerInterval = DefaultTickerInterval
	}
	if c.Scheduler.TickerThreshold == 0 {
		c.Scheduler.TickerThreshold = DefaultTickerThreshold
	}
	if c.Scheduler.Concurrency == 0 {
		c.Scheduler.Concurrency = DefaultConcurrency
	}

	// Symbol defaults
	if len(c.Symbols) == 0 {
		c.Symbols = defaultSymbols()
	}
	if len(c.Realtime.Symbols) == 0 {
		c.Realtime.Symbols = []string{"SOL"}
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}
