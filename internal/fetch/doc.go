// Package fetch provides the retrying HTTP client for upstream price sources.
//
// Upstream sources (consumed as opaque JSON providers):
//   - DEX screener pairs endpoint: trading pools per token mint
//   - Price oracle endpoint: one price per token mint
//
// Transient failures (HTTP 429 and 5xx) are retried with exponential
// backoff plus jitter; everything else fails immediately.
package fetch
