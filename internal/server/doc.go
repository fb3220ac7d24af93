// Package server exposes the HTTP surface: the token-list query API,
// the WebSocket upgrade endpoint, and health checks.
package server
