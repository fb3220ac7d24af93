// Package scheduler drives the two periodic jobs of the aggregator:
//
//   - Full aggregation (slow cadence): fetch every tracked symbol from
//     all sources, merge, and replace the cached catalog wholesale.
//   - Realtime ticker (fast cadence): re-price a narrow symbol set and
//     publish significant deltas to the broadcast channel.
//
// Both run on the Runner abstraction: an immediate first run, then a
// fixed interval, each cycle reported as an inspectable CycleResult.
// A failed cycle never terminates the loop; the next tick proceeds.
package scheduler
