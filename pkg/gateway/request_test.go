package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ============================================================================
// Request Parsing Tests
// ============================================================================

func parseBody(t *testing.T, body string) (*GenerationRequest, error) {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(body))
	return ParseGenerationRequest(r)
}

func TestParseGenerationRequest_Message(t *testing.T) {
	req, err := parseBody(t, `{"message": "Hello"}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if req.Text() != "Hello" {
		t.Errorf("Unexpected text %q", req.Text())
	}
	if req.MaxTokens != DefaultMaxTokens {
		t.Errorf("Expected default max_tokens %d, got %d", DefaultMaxTokens, req.MaxTokens)
	}
	if req.EffectiveTemperature() != DefaultTemperature {
		t.Errorf("Expected default temperature, got %v", req.EffectiveTemperature())
	}
	if req.UserID != DefaultUserID {
		t.Errorf("Expected default user_id, got %q", req.UserID)
	}
}

func TestParseGenerationRequest_PromptWins(t *testing.T) {
	req, err := parseBody(t, `{"message": "from message", "prompt": "from prompt"}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if req.Text() != "from prompt" {
		t.Errorf("Expected prompt to win, got %q", req.Text())
	}
}

func TestParseGenerationRequest_ExplicitFields(t *testing.T) {
	req, err := parseBody(t, `{"prompt": "x", "max_tokens": 50, "temperature": 0.2, "user_id": "alice"}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if req.MaxTokens != 50 {
		t.Errorf("Expected max_tokens 50, got %d", req.MaxTokens)
	}
	if req.EffectiveTemperature() != 0.2 {
		t.Errorf("Expected temperature 0.2, got %v", req.EffectiveTemperature())
	}
	if req.UserID != "alice" {
		t.Errorf("Expected user_id alice, got %q", req.UserID)
	}
}

func TestParseGenerationRequest_ZeroTemperature(t *testing.T) {
	// An explicit zero must not be replaced by the default
	req, err := parseBody(t, `{"prompt": "x", "temperature": 0}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if req.EffectiveTemperature() != 0 {
		t.Errorf("Explicit zero temperature was overridden: %v", req.EffectiveTemperature())
	}
}

func TestParseGenerationRequest_WrappedBody(t *testing.T) {
	// An outer event object with a string-encoded body unwraps
	req, err := parseBody(t, `{"body": "{\"message\": \"wrapped\"}"}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if req.Text() != "wrapped" {
		t.Errorf("Expected wrapped body to unwrap, got %q", req.Text())
	}
}

func TestParseGenerationRequest_InvalidJSON(t *testing.T) {
	for _, body := range []string{"", "not json", `{"body": "not json"}`} {
		if _, err := parseBody(t, body); err == nil {
			t.Errorf("Expected parse error for %q", body)
		}
	}
}

func TestParseGenerationRequest_OversizedBody(t *testing.T) {
	body := `{"message": "` + strings.Repeat("a", MaxRequestBodySize) + `"}`
	if _, err := parseBody(t, body); err == nil {
		t.Error("Expected error for oversized body")
	}
}

// ============================================================================
// Provenance Tests
// ============================================================================

func TestProvenanceFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/generate", nil)
	r.RemoteAddr = "192.0.2.1:54321"
	r.Header.Set("User-Agent", "curl/8.0")

	prov := ProvenanceFromRequest(r)
	if prov.SourceAddr != "192.0.2.1" {
		t.Errorf("Expected host without port, got %q", prov.SourceAddr)
	}
	if prov.ClientSignature != "curl/8.0" {
		t.Errorf("Expected user agent, got %q", prov.ClientSignature)
	}
}

// ============================================================================
// Outcome Tests
// ============================================================================

func TestOutcome_StatusCodes(t *testing.T) {
	cases := []struct {
		outcome Outcome
		want    int
	}{
		{OutcomeSuccess, http.StatusOK},
		{OutcomeInvalidRequest, http.StatusBadRequest},
		{OutcomePolicyBlocked, http.StatusBadRequest},
		{OutcomeRateLimited, http.StatusTooManyRequests},
		{OutcomeUpstreamError, http.StatusInternalServerError},
		{OutcomeUpstreamTimeout, http.StatusInternalServerError},
		{OutcomeInternalError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := tc.outcome.StatusCode(); got != tc.want {
			t.Errorf("%s.StatusCode() = %d, want %d", tc.outcome, got, tc.want)
		}
	}
}

func TestOutcome_Terminal(t *testing.T) {
	for _, o := range []Outcome{OutcomeInvalidRequest, OutcomePolicyBlocked, OutcomeRateLimited} {
		if !o.Terminal() {
			t.Errorf("%s should be terminal before the provider call", o)
		}
	}
	for _, o := range []Outcome{OutcomeSuccess, OutcomeUpstreamError, OutcomeUpstreamTimeout} {
		if o.Terminal() {
			t.Errorf("%s should not be terminal before the provider call", o)
		}
	}
}
