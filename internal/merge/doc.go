// Package merge consolidates multi-source, multi-pool raw token data
// into one canonical record per token.
//
// Representative-pool rule: among a token's deduplicated pools, the one
// with the highest 24h volume wins; ties break on the lowest pool
// address. Tokens without pool data fall back to their oracle price.
// Output ordering is 24h volume descending, then symbol ascending, so
// identical input always yields identical output.
package merge
