package scheduler

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/tokenpulse/tokenpulse/internal/cache"
	"github.com/tokenpulse/tokenpulse/internal/merge"
	"github.com/tokenpulse/tokenpulse/internal/model"
)

// TickerConfig holds realtime ticker job settings.
type TickerConfig struct {
	Symbols   []model.Symbol // Narrow high-priority set (e.g. just SOL)
	Threshold float64        // Relative change that triggers a publish (default: 0.0005)
}

// TickerJob re-prices its symbols on a fast cadence and publishes a
// PriceUpdateEvent when the move against the last checkpoint crosses
// the threshold. The checkpoint always advances, published or not.
type TickerJob struct {
	cfg     TickerConfig
	fetcher Fetcher
	store   cache.Store
	logger  *slog.Logger
}

// NewTickerJob creates the realtime ticker job.
func NewTickerJob(cfg TickerConfig, fetcher Fetcher, store cache.Store, logger *slog.Logger) *TickerJob {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = 0.0005
	}
	return &TickerJob{
		cfg:     cfg,
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}
}

// Name implements Job.
func (j *TickerJob) Name() string { return "ticker" }

// Run executes one ticker cycle across all configured symbols. A
// symbol's failure is logged and contributes no update; the cycle only
// fails when every symbol failed.
func (j *TickerJob) Run(ctx context.Context) CycleResult {
	start := time.Now()

	var lastErr error
	failed := 0

	for _, sym := range j.cfg.Symbols {
		if err := j.tick(ctx, sym); err != nil {
			j.logger.Warn("ticker cycle skipped symbol",
				"symbol", sym.Name,
				"error", err,
			)
			lastErr = err
			failed++
		}
	}

	if failed == len(j.cfg.Symbols) {
		return CycleResult{Outcome: OutcomeFailed, Err: lastErr, Duration: time.Since(start)}
	}
	return CycleResult{Outcome: OutcomeOK, Duration: time.Since(start)}
}

// tick re-prices one symbol: concurrent fetch and checkpoint read,
// change detection against the checkpoint, conditional publish, and an
// unconditional checkpoint rewrite.
func (j *TickerJob) tick(ctx context.Context, sym model.Symbol) error {
	type fetchResult struct {
		raw model.RawSourceResult
		err error
	}
	type stateResult struct {
		state model.TickerState
		found bool
		err   error
	}

	fetchCh := make(chan fetchResult, 1)
	stateCh := make(chan stateResult, 1)

	go func() {
		raw, err := j.fetcher.FetchSymbol(ctx, sym)
		fetchCh <- fetchResult{raw: raw, err: err}
	}()
	go func() {
		var state model.TickerState
		found, err := j.store.GetJSON(ctx, cache.TickerKey(sym.Name), &state)
		stateCh <- stateResult{state: state, found: found, err: err}
	}()

	fetched := <-fetchCh
	prior := <-stateCh

	if fetched.err != nil {
		return fetched.err
	}
	if prior.err != nil {
		return prior.err
	}

	price, volume, ok := representativePrice(fetched.raw)
	if !ok {
		return &merge.MergeError{Symbol: sym.Name, Reason: "no usable price in any source"}
	}

	// First observation establishes the baseline only.
	if prior.found && prior.state.Price > 0 {
		change := math.Abs(price-prior.state.Price) / prior.state.Price
		if change > j.cfg.Threshold {
			ev := model.PriceUpdateEvent{
				Symbol:    sym.Name,
				Price:     price,
				Volume24h: volume,
				Timestamp: time.Now().UnixMilli(),
			}
			if err := j.store.Publish(ctx, cache.BroadcastChannel, ev); err != nil {
				j.logger.Error("publish failed", "symbol", sym.Name, "error", err)
			} else {
				j.logger.Info("price update published",
					"symbol", sym.Name,
					"price", price,
					"change", change,
				)
			}
		}
	}

	return j.store.SetJSON(ctx, cache.TickerKey(sym.Name), model.TickerState{Price: price}, cache.TickerTTL)
}

// representativePrice extracts the freshest price for a symbol using
// the merge engine's pool policy, falling back to the oracle price.
func representativePrice(raw model.RawSourceResult) (price, volume float64, ok bool) {
	if pool, found := merge.RepresentativePool(raw.DexScreener); found {
		return pool.PriceUSD, pool.Volume24h, true
	}
	if len(raw.JupiterPrice) > 0 {
		return raw.JupiterPrice[0].Price, 0, true
	}
	return 0, 0, false
}
