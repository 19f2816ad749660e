// Package usage records per-request usage data and serves aggregate
// statistics.
//
// The write path is fire and forget: the Recorder buffers records on a
// channel and a background worker persists them to the SQLite store.
// Recording never blocks the request pipeline and a failing store never
// fails a request; errors are logged and dropped records are counted.
//
// The read path (Stats) backs the usage query endpoint and is strictly
// read-only.
//
// A cron-driven retention job prunes records past the configured age so
// the database stays bounded.
package usage
