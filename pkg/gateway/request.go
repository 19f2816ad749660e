package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
)

const (
	// MaxRequestBodySize is the maximum allowed request body size (1MB).
	MaxRequestBodySize = 1 << 20

	// DefaultMaxTokens is the generation cap applied when the request
	// does not specify one.
	DefaultMaxTokens = 1000

	// DefaultTemperature is the sampling temperature applied when the
	// request does not specify one.
	DefaultTemperature = 0.7

	// DefaultUserID is used when the request carries no user identifier.
	DefaultUserID = "anonymous"
)

// GenerationRequest is the typed inbound envelope.
type GenerationRequest struct {
	// Message and Prompt are alternative names for the user text; when
	// both are present Prompt wins.
	Message string `json:"message"`
	Prompt  string `json:"prompt"`

	// MaxTokens caps generation length. Optional, default 1000.
	MaxTokens int `json:"max_tokens"`

	// Temperature controls sampling randomness. Optional, default 0.7.
	Temperature *float64 `json:"temperature"`

	// UserID is an opaque caller-supplied identifier used for usage
	// accounting. Optional, default "anonymous".
	UserID string `json:"user_id"`
}

// Text returns the user text, preferring Prompt over Message.
func (r *GenerationRequest) Text() string {
	if r.Prompt != "" {
		return r.Prompt
	}
	return r.Message
}

// EffectiveTemperature returns the requested temperature or the default.
func (r *GenerationRequest) EffectiveTemperature() float64 {
	if r.Temperature != nil {
		return *r.Temperature
	}
	return DefaultTemperature
}

// ApplyDefaults fills unset optional fields.
func (r *GenerationRequest) ApplyDefaults() {
	if r.MaxTokens <= 0 {
		r.MaxTokens = DefaultMaxTokens
	}
	if r.UserID == "" {
		r.UserID = DefaultUserID
	}
}

// RequestError represents a request parsing error.
type RequestError struct {
	Message string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// ParseGenerationRequest parses an HTTP request body into a typed
// GenerationRequest with defaults applied.
//
// Two envelope shapes are accepted: the request fields inlined as the
// JSON body, or an outer event object whose "body" field is a
// string-encoded JSON envelope (the shape API gateways hand to function
// runtimes). The body is size-limited to prevent memory exhaustion.
func ParseGenerationRequest(r *http.Request) (*GenerationRequest, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		return nil, &RequestError{Message: "failed to read request body"}
	}
	if len(data) > MaxRequestBodySize {
		return nil, &RequestError{
			Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize),
		}
	}
	if len(data) == 0 {
		return nil, &RequestError{Message: "request body is empty"}
	}

	// Unwrap a string-encoded inner body when present.
	var outer struct {
		Body *string `json:"body"`
	}
	if err := json.Unmarshal(data, &outer); err != nil {
		return nil, &RequestError{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if outer.Body != nil {
		data = []byte(*outer.Body)
	}

	var req GenerationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &RequestError{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}

	req.ApplyDefaults()
	return &req, nil
}

// Provenance identifies where a request came from. It feeds conversation
// key derivation: the same source address and client signature always map
// to the same conversation and rate-limit bucket.
type Provenance struct {
	// SourceAddr is the caller's network address (host only, no port).
	SourceAddr string

	// ClientSignature is a stable client identifier, typically the
	// User-Agent string.
	ClientSignature string
}

// ProvenanceFromRequest extracts provenance from an HTTP request.
func ProvenanceFromRequest(r *http.Request) Provenance {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = h
	}
	return Provenance{
		SourceAddr:      host,
		ClientSignature: r.UserAgent(),
	}
}
