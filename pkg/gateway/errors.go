package gateway

import "net/http"

// Outcome classifies how a request terminated. Every request resolves to
// exactly one outcome; outcomes are the label set for metrics and logs.
type Outcome string

const (
	// OutcomeSuccess means the full pipeline ran and a generation was
	// returned (possibly with the output replaced by a refusal).
	OutcomeSuccess Outcome = "success"

	// OutcomeInvalidRequest means the envelope or the message failed
	// validation.
	OutcomeInvalidRequest Outcome = "invalid_request"

	// OutcomePolicyBlocked means the inbound message matched the content
	// policy.
	OutcomePolicyBlocked Outcome = "policy_blocked"

	// OutcomeRateLimited means the caller exceeded its request quota for
	// the current window.
	OutcomeRateLimited Outcome = "rate_limited"

	// OutcomeUpstreamError means the model provider returned an error.
	OutcomeUpstreamError Outcome = "upstream_error"

	// OutcomeUpstreamTimeout means the model provider did not respond
	// within the configured deadline.
	OutcomeUpstreamTimeout Outcome = "upstream_timeout"

	// OutcomeInternalError means an unexpected failure inside the
	// pipeline itself.
	OutcomeInternalError Outcome = "internal_error"
)

// StatusCode returns the HTTP status code for an outcome. The mapping is
// fixed: client faults are 400, quota exhaustion is 429, everything that
// goes wrong on our side of the wire is 500.
func (o Outcome) StatusCode() int {
	switch o {
	case OutcomeSuccess:
		return http.StatusOK
	case OutcomeInvalidRequest, OutcomePolicyBlocked:
		return http.StatusBadRequest
	case OutcomeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Terminal reports whether the outcome ends the pipeline before the
// provider is called.
func (o Outcome) Terminal() bool {
	switch o {
	case OutcomeInvalidRequest, OutcomePolicyBlocked, OutcomeRateLimited:
		return true
	}
	return false
}
