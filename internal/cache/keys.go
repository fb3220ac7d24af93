package cache

import (
	"fmt"
	"time"
)

// Well-known keys and channels.
const (
	// CatalogKey holds the full aggregated token catalog.
	CatalogKey = "tokens:catalog"

	// BroadcastChannel carries PriceUpdateEvent payloads to subscribers.
	BroadcastChannel = "broadcast:price"
)

// TTL policy.
const (
	// DefaultTTL applies to cached views and anything that does not
	// override it.
	DefaultTTL = 30 * time.Second

	// TickerTTL applies to the ticker job's per-symbol checkpoint.
	TickerTTL = 60 * time.Second

	// NoExpiry marks keys that are refreshed by their writer, not
	// expired away (the catalog).
	NoExpiry time.Duration = 0
)

// TickerKey returns the ticker checkpoint key for a symbol.
func TickerKey(symbol string) string {
	return "ticker:" + symbol
}

// ViewKey returns the cache key for one query shape. The cursor is part
// of the key so distinct pages never collide on one cache slot.
func ViewKey(limit int, sortBy, filterBy, cursor string) string {
	return fmt.Sprintf("view:%d:%s:%s:%s", limit, sortBy, filterBy, cursor)
}
