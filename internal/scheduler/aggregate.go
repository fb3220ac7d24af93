package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tokenpulse/tokenpulse/internal/cache"
	"github.com/tokenpulse/tokenpulse/internal/merge"
	"github.com/tokenpulse/tokenpulse/internal/model"
)

// Fetcher provides raw upstream data for one symbol.
type Fetcher interface {
	FetchSymbol(ctx context.Context, sym model.Symbol) (model.RawSourceResult, error)
}

// AggregateConfig holds full-aggregation job settings.
type AggregateConfig struct {
	Symbols     []model.Symbol // Tracked seed list
	Concurrency int            // Max concurrent symbol fetches (default: 4)
}

// AggregateJob rebuilds the full token catalog: fetch all symbols
// concurrently, drop the ones where every source failed, merge, and
// replace the cached catalog. It is the catalog key's only writer.
type AggregateJob struct {
	cfg     AggregateConfig
	fetcher Fetcher
	store   cache.Store
	logger  *slog.Logger
}

// NewAggregateJob creates the full-aggregation job.
func NewAggregateJob(cfg AggregateConfig, fetcher Fetcher, store cache.Store, logger *slog.Logger) *AggregateJob {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 4
	}
	return &AggregateJob{
		cfg:     cfg,
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}
}

// Name implements Job.
func (j *AggregateJob) Name() string { return "aggregate" }

// Run executes one aggregation cycle. Per-symbol failures are isolated:
// a dead symbol is dropped, the batch continues. On any cycle-level
// failure the previously stored catalog stands untouched.
func (j *AggregateJob) Run(ctx context.Context) CycleResult {
	start := time.Now()

	var mu sync.Mutex
	raws := make([]model.RawSourceResult, 0, len(j.cfg.Symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.cfg.Concurrency)

	for _, sym := range j.cfg.Symbols {
		sym := sym
		g.Go(func() error {
			raw, err := j.fetcher.FetchSymbol(gctx, sym)
			if err != nil {
				j.logger.Warn("symbol dropped from cycle",
					"symbol", sym.Name,
					"error", err,
				)
				return nil
			}
			// Sources can respond cleanly yet carry zero rows; the
			// merge engine must never see a data-less symbol.
			if !raw.HasData() {
				j.logger.Warn("symbol dropped from cycle",
					"symbol", sym.Name,
					"error", "sources returned no data",
				)
				return nil
			}
			mu.Lock()
			raws = append(raws, raw)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CycleResult{Outcome: OutcomeFailed, Err: err, Duration: time.Since(start)}
	}

	if len(raws) == 0 {
		j.logger.Warn("every symbol failed, catalog left as-is")
		return CycleResult{Outcome: OutcomeSkipped, Duration: time.Since(start)}
	}

	// Fetch completion order is nondeterministic; fix it before merging.
	sort.Slice(raws, func(a, b int) bool { return raws[a].Symbol < raws[b].Symbol })

	catalog, err := merge.Merge(raws)
	if err != nil {
		return CycleResult{Outcome: OutcomeFailed, Err: err, Duration: time.Since(start)}
	}

	if err := j.store.SetJSON(ctx, cache.CatalogKey, catalog, cache.NoExpiry); err != nil {
		return CycleResult{Outcome: OutcomeFailed, Err: err, Duration: time.Since(start)}
	}

	j.logger.Info("catalog refreshed",
		"symbols", len(j.cfg.Symbols),
		"records", len(catalog),
		"duration", time.Since(start),
	)

	return CycleResult{Outcome: OutcomeOK, Duration: time.Since(start)}
}
