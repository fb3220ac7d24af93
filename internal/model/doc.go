// Package model defines shared data types used across the aggregator.
//
// Conventions:
//   - Prices and volumes: float64 USD, straight from the upstream sources
//   - Timestamps: int64 milliseconds since Unix epoch on wire types
//   - IDs: upper-case token symbols (e.g. "SOL"), mints as base58 strings
package model
