// Package conversation provides bounded per-conversation message history
// and caller identity derivation.
//
// The Store keeps an ordered message log per conversation key, evicting
// from the front when a configured bound is exceeded so that history reads
// always return the most recent messages in insertion order. State is
// process-lifetime only; nothing is persisted.
//
// DeriveKey turns request provenance (source address plus client
// signature) into a stable opaque key that correlates a caller's history
// and rate-limit bucket without requiring login.
package conversation
