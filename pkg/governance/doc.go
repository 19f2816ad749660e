// Package governance implements the per-request governance layer for Parley.
//
// # Overview
//
// Every inbound generation request passes through this layer before any
// model provider is contacted. It provides:
//
//   - Token estimation (cheap length-based heuristic, not a tokenizer)
//   - Input validation (emptiness, length bounds, prompt-injection heuristics)
//   - Content-policy filtering (configurable keyword patterns with severity)
//
// The subpackages supply the stateful pieces:
//
//   - governance/ratelimit: fixed-window per-caller admission control
//   - governance/conversation: bounded per-conversation message history and
//     caller identity derivation
//
// All state lives for the lifetime of the process. Nothing in this package
// performs I/O; the only blocking step of a request is the delegated
// provider call, which is out of scope here.
package governance
