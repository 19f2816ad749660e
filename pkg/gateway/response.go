package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// Content filter status values reported in success metadata.
const (
	FilterStatusPassed   = "passed"
	FilterStatusFiltered = "filtered"
)

// Metadata accompanies every successful generation.
type Metadata struct {
	InputTokens         int    `json:"input_tokens"`
	OutputTokens        int    `json:"output_tokens"`
	ResponseTimeMS      int64  `json:"response_time_ms"`
	ModelID             string `json:"model_id,omitempty"`
	MockMode            bool   `json:"mock_mode,omitempty"`
	UserID              string `json:"user_id"`
	ContentFilterStatus string `json:"content_filter_status"`
}

// GenerationResponse is the success envelope.
type GenerationResponse struct {
	GeneratedText string   `json:"generated_text"`
	Metadata      Metadata `json:"metadata"`
}

// ErrorDetails carries structured context for policy and limit errors.
type ErrorDetails struct {
	Reason           string   `json:"reason,omitempty"`
	Severity         string   `json:"severity,omitempty"`
	DetectedPatterns []string `json:"detected_patterns,omitempty"`
	RetryAfter       int      `json:"retry_after_seconds,omitempty"`
}

// ErrorResponse is the error envelope. Code is the machine-readable
// outcome; Error is the human-readable message.
type ErrorResponse struct {
	Error   string        `json:"error"`
	Code    string        `json:"code"`
	Details *ErrorDetails `json:"details,omitempty"`
}

// RateLimitState is the caller's quota position after the admission
// decision, surfaced as X-RateLimit-* headers.
type RateLimitState struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// PipelineResult is the terminal state of one request. Exactly one of
// Response and Err is set: Response on OutcomeSuccess, Err otherwise.
type PipelineResult struct {
	Outcome   Outcome
	Response  *GenerationResponse
	Err       *ErrorResponse
	RateLimit *RateLimitState
}

// WriteTo serializes the result to an HTTP response: status code from the
// outcome, rate-limit headers when known, JSON body.
func (pr *PipelineResult) WriteTo(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	if rl := pr.RateLimit; rl != nil {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(rl.Reset.Unix(), 10))
		if pr.Outcome == OutcomeRateLimited {
			retry := int(time.Until(rl.Reset).Seconds()) + 1
			if retry < 1 {
				retry = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
		}
	}
	w.WriteHeader(pr.Outcome.StatusCode())

	if pr.Outcome == OutcomeSuccess {
		return json.NewEncoder(w).Encode(pr.Response)
	}
	return json.NewEncoder(w).Encode(pr.Err)
}

// errorResult builds a PipelineResult for a failed outcome.
func errorResult(outcome Outcome, message string, details *ErrorDetails) *PipelineResult {
	return &PipelineResult{
		Outcome: outcome,
		Err: &ErrorResponse{
			Error:   message,
			Code:    string(outcome),
			Details: details,
		},
	}
}

// WriteJSONError writes a bare error envelope outside the pipeline, for
// handler-level faults such as an unsupported method.
func WriteJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&ErrorResponse{Error: message, Code: code})
}
