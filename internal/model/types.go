package model

import "time"

// -----------------------------------------------------------------------------
// Catalog Types
// -----------------------------------------------------------------------------

// Symbol identifies a tracked token and where to find it upstream.
type Symbol struct {
	Name string `yaml:"name"` // Display symbol (e.g. "SOL")
	Mint string `yaml:"mint"` // Token mint address (base58)
}

// TokenRecord is one canonical price/volume row per tracked token.
// Records are replaced wholesale on every full aggregation run and
// never partially mutated.
type TokenRecord struct {
	ID             string  `json:"id"`             // Token symbol, unique within the catalog
	Price          float64 `json:"price"`          // Representative price (USD)
	Volume24h      float64 `json:"volume24h"`      // 24-hour volume (USD)
	PriceChange1h  float64 `json:"priceChange1h"`  // 1-hour price change (%)
	PriceChange24h float64 `json:"priceChange24h"` // 24-hour price change (%)
}

// -----------------------------------------------------------------------------
// Upstream Source Types
// -----------------------------------------------------------------------------

// Pair is a normalized trading-pool row from a DEX screener source.
// Multiple pools can exist per token; the merge engine picks one
// representative per token.
type Pair struct {
	PoolAddress    string  // Pool/pair address (base58)
	DexID          string  // DEX identifier (e.g. "raydium")
	PriceUSD       float64 // Pool price (USD)
	Volume24h      float64 // 24-hour pool volume (USD)
	Liquidity      float64 // Pool liquidity (USD)
	PriceChange1h  float64 // 1-hour price change (%)
	PriceChange24h float64 // 24-hour price change (%)
}

// PriceEntry is a normalized price row from a price-oracle source.
type PriceEntry struct {
	ID    string  // Token mint or symbol as reported upstream
	Price float64 // Price (USD)
}

// RawSourceResult holds everything fetched for one symbol in one cycle.
// A nil slice means that source failed or returned nothing; a symbol
// where every source is nil is dropped by the caller before merging.
type RawSourceResult struct {
	Symbol       string
	DexScreener  []Pair
	JupiterPrice []PriceEntry
}

// HasData reports whether at least one source yielded data.
func (r RawSourceResult) HasData() bool {
	return len(r.DexScreener) > 0 || len(r.JupiterPrice) > 0
}

// -----------------------------------------------------------------------------
// Realtime Types
// -----------------------------------------------------------------------------

// TickerState is the ticker job's memory of the last published price for
// a symbol. It is a self-consistency checkpoint with a short cache TTL,
// not shared with any other writer.
type TickerState struct {
	Price float64 `json:"price"`
}

// PriceUpdateEvent is a significant price change pushed to realtime
// subscribers. It exists only on the pub/sub channel and is never
// persisted.
type PriceUpdateEvent struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Volume24h float64 `json:"volume24h"`
	Timestamp int64   `json:"timestamp"` // ms since epoch
}

// -----------------------------------------------------------------------------
// Query Types
// -----------------------------------------------------------------------------

// Pagination describes the cursor position of a view page.
type Pagination struct {
	Limit      int    `json:"limit"`
	NextCursor string `json:"nextCursor,omitempty"` // Empty when no more pages
}

// QueryResultView is a filtered/sorted/paginated slice of the catalog,
// cached independently per distinct query shape.
type QueryResultView struct {
	Data       []TokenRecord `json:"data"`
	Pagination Pagination    `json:"pagination"`
	Cached     bool          `json:"cached"`
	CacheTime  time.Time     `json:"cacheTime"`
}
