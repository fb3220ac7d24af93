package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/tokenpulse/tokenpulse/internal/cache"
	"github.com/tokenpulse/tokenpulse/internal/model"
)

func collectEvents(t *testing.T, store *cache.MemoryStore) func() []model.PriceUpdateEvent {
	t.Helper()

	sub := store.Subscribe(context.Background(), cache.BroadcastChannel)
	t.Cleanup(func() { sub.Close() })

	return func() []model.PriceUpdateEvent {
		var events []model.PriceUpdateEvent
		for {
			select {
			case raw := <-sub.Messages():
				var ev model.PriceUpdateEvent
				if err := json.Unmarshal(raw, &ev); err != nil {
					t.Fatalf("bad event payload: %v", err)
				}
				events = append(events, ev)
			case <-time.After(50 * time.Millisecond):
				return events
			}
		}
	}
}

func tickerJob(store cache.Store, fetcher Fetcher) *TickerJob {
	return NewTickerJob(TickerConfig{
		Symbols:   seedSymbols("SOL"),
		Threshold: 0.0005, // 0.05%
	}, fetcher, store, nil)
}

func TestTickerJob_FirstObservationEstablishesBaseline(t *testing.T) {
	store := cache.NewMemory()
	drain := collectEvents(t, store)

	fetcher := &fakeFetcher{results: map[string]model.RawSourceResult{
		"SOL": rawWithPool("SOL", 100.00, 5000),
	}}

	res := tickerJob(store, fetcher).Run(context.Background())
	if res.Outcome != OutcomeOK {
		t.Fatalf("Outcome = %s (err=%v), want ok", res.Outcome, res.Err)
	}

	if events := drain(); len(events) != 0 {
		t.Errorf("events = %+v, want none on first observation", events)
	}

	var state model.TickerState
	ok, _ := store.GetJSON(context.Background(), cache.TickerKey("SOL"), &state)
	if !ok || state.Price != 100.00 {
		t.Errorf("baseline state = (%v, %+v), want (true, {100})", ok, state)
	}
}

func TestTickerJob_ThresholdCrossPublishesOnce(t *testing.T) {
	store := cache.NewMemory()
	drain := collectEvents(t, store)

	fetcher := &fakeFetcher{results: map[string]model.RawSourceResult{
		"SOL": rawWithPool("SOL", 100.00, 5000),
	}}
	job := tickerJob(store, fetcher)

	// Baseline at 100.00, then a 0.1% move.
	job.Run(context.Background())
	fetcher.results["SOL"] = rawWithPool("SOL", 100.10, 5000)
	job.Run(context.Background())

	events := drain()
	if len(events) != 1 {
		t.Fatalf("events = %d, want exactly 1", len(events))
	}
	if events[0].Symbol != "SOL" || events[0].Price != 100.10 {
		t.Errorf("event = %+v, want SOL @ 100.10", events[0])
	}
}

func TestTickerJob_BelowThresholdNoPublishButStateAdvances(t *testing.T) {
	store := cache.NewMemory()

	fetcher := &fakeFetcher{results: map[string]model.RawSourceResult{
		"SOL": rawWithPool("SOL", 100.10, 5000),
	}}
	job := tickerJob(store, fetcher)
	job.Run(context.Background()) // baseline 100.10

	drain := collectEvents(t, store)

	// 0.005% move, below the 0.05% threshold.
	fetcher.results["SOL"] = rawWithPool("SOL", 100.105, 5000)
	res := job.Run(context.Background())
	if res.Outcome != OutcomeOK {
		t.Fatalf("Outcome = %s, want ok", res.Outcome)
	}

	if events := drain(); len(events) != 0 {
		t.Errorf("events = %+v, want none below threshold", events)
	}

	var state model.TickerState
	ok, _ := store.GetJSON(context.Background(), cache.TickerKey("SOL"), &state)
	if !ok || state.Price != 100.105 {
		t.Errorf("state = (%v, %+v), want advanced to 100.105", ok, state)
	}
}

func TestTickerJob_ExpiredBaselineRestarts(t *testing.T) {
	store := cache.NewMemory()
	drain := collectEvents(t, store)

	fetcher := &fakeFetcher{results: map[string]model.RawSourceResult{
		"SOL": rawWithPool("SOL", 100.00, 5000),
	}}
	job := tickerJob(store, fetcher)
	job.Run(context.Background())

	// Checkpoint TTL lapse behaves like a first observation again.
	store.Delete(cache.TickerKey("SOL"))

	fetcher.results["SOL"] = rawWithPool("SOL", 150.00, 5000)
	job.Run(context.Background())

	if events := drain(); len(events) != 0 {
		t.Errorf("events = %+v, want none after checkpoint expiry", events)
	}
}

func TestTickerJob_FetchFailureDoesNotUpdateState(t *testing.T) {
	store := cache.NewMemory()

	fetcher := &fakeFetcher{results: map[string]model.RawSourceResult{
		"SOL": rawWithPool("SOL", 100.00, 5000),
	}}
	job := tickerJob(store, fetcher)
	job.Run(context.Background())

	fetcher.results = map[string]model.RawSourceResult{}
	fetcher.errs = map[string]error{"SOL": errors.New("all sources failed")}

	res := job.Run(context.Background())
	if res.Outcome != OutcomeFailed {
		t.Fatalf("Outcome = %s, want failed when the only symbol errors", res.Outcome)
	}

	var state model.TickerState
	ok, _ := store.GetJSON(context.Background(), cache.TickerKey("SOL"), &state)
	if !ok || state.Price != 100.00 {
		t.Errorf("state = (%v, %+v), want untouched baseline", ok, state)
	}
}

func TestTickerJob_OracleFallbackPrice(t *testing.T) {
	store := cache.NewMemory()

	fetcher := &fakeFetcher{results: map[string]model.RawSourceResult{
		"SOL": {Symbol: "SOL", JupiterPrice: []model.PriceEntry{{ID: "SOL", Price: 99.5}}},
	}}

	res := tickerJob(store, fetcher).Run(context.Background())
	if res.Outcome != OutcomeOK {
		t.Fatalf("Outcome = %s (err=%v), want ok", res.Outcome, res.Err)
	}

	var state model.TickerState
	ok, _ := store.GetJSON(context.Background(), cache.TickerKey("SOL"), &state)
	if !ok || state.Price != 99.5 {
		t.Errorf("state = (%v, %+v), want oracle price 99.5", ok, state)
	}
}
