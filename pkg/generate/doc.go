// Package generate defines the model-invocation boundary for Parley.
//
// The governance pipeline treats text generation as an opaque, possibly
// slow, possibly failing external collaborator behind the Generator
// interface. Two implementations are provided:
//
//   - HTTPGenerator forwards prompts to a hosted messages-style API with
//     bounded timeouts and retry on transient failures.
//   - MockGenerator returns deterministic canned responses and is selected
//     automatically when no provider endpoint is configured.
//
// All methods accept a context.Context; implementations must return
// promptly when the context is cancelled or its deadline passes.
package generate
