// Package gateway implements the realtime broadcast path: it subscribes
// to the cache store's broadcast channel and fans price update events
// out to connected WebSocket clients.
//
// Delivery is topic-filtered: a client may subscribe to token symbols
// (normalized upper-case); an event for symbol S reaches members of
// topic S and members of the wildcard ALL topic. A client that never
// subscribes is an implicit ALL member, so plain connections still see
// every event.
//
// Malformed broadcast payloads are logged and dropped; the relay loop
// never crashes on bad input.
package gateway
