// Package gateway composes the governance layer into the per-request
// decision pipeline.
//
// # Pipeline
//
// Each request moves through a fixed sequence of states, any of which may
// terminate the pipeline early with a typed outcome:
//
//  1. Parse the inbound envelope into a typed request
//  2. Content-policy check on the prompt
//  3. Conversation-key derivation from request provenance
//  4. Rate-limit admission
//  5. Append the inbound message to history
//  6. Delegate to the model provider under a bounded timeout
//  7. Re-check policy on the output, substituting a fixed refusal on block
//  8. Append the reply, compute token metadata, return success
//
// No step after a terminal outcome executes. Every terminal outcome maps
// to exactly one HTTP status code and a stable JSON shape; a 200 never
// carries an error body.
//
// Untyped JSON is converted to the typed envelope at the boundary
// (ParseGenerationRequest) before anything reaches the governance layer.
package gateway
