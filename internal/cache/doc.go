// Package cache provides the Redis-backed store used both as the
// materialized-view cache and as the pub/sub transport for price
// update broadcasts.
//
// Key namespace:
//   - tokens:catalog                      full aggregated catalog (no expiry)
//   - ticker:<SYMBOL>                     ticker job checkpoint (60s TTL)
//   - view:<limit>:<sort>:<filter>:<cur>  cached query views (default TTL)
//
// The broadcast channel is independent of the key namespace; publishing
// never writes a retrievable key. Subscriptions run on their own
// connection because a subscribed Redis connection cannot issue other
// commands.
package cache
