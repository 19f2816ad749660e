// Package ratelimit implements fixed-window per-key request admission
// control.
//
// # Algorithm
//
// The limiter keeps one window record per caller key:
//
//  1. If no record exists, or the window has elapsed, the record resets
//     lazily: window start = now, count = 0. Windows are never reset
//     proactively.
//  2. If the count is below the limit, it is incremented and the request
//     is admitted.
//  3. Otherwise the request is denied with no further mutation.
//
// Exactly maxRequests requests are admitted per window; the next request
// is denied until the window rolls over. Window boundaries are key-local,
// not globally synchronized.
//
// # Thread Safety
//
// Records are held in sharded maps with one mutex per shard, so mutations
// of the same key are atomic while distinct keys rarely contend. There is
// no global lock.
package ratelimit
