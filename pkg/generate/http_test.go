package generate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// ============================================================================
// HTTP Generator Tests
// ============================================================================

const successBody = `{
	"model": "claude-sonnet-4-20250514",
	"content": [{"type": "text", "text": "Hi there."}],
	"usage": {"input_tokens": 12, "output_tokens": 4}
}`

func newTestGenerator(url string, maxRetries int) *HTTPGenerator {
	return NewHTTPGenerator(HTTPConfig{
		Name:       "anthropic",
		BaseURL:    url,
		APIKey:     "test-key",
		ModelID:    "claude-sonnet-4-20250514",
		Timeout:    5 * time.Second,
		MaxRetries: maxRetries,
	})
}

func TestHTTPGenerator_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Errorf("Missing API key header")
		}
		if r.Header.Get("Anthropic-Version") == "" {
			t.Errorf("Missing version header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(successBody))
	}))
	defer srv.Close()

	g := newTestGenerator(srv.URL, 0)

	result, err := g.Generate(context.Background(), &Request{
		Prompt:      "Hello",
		MaxTokens:   1000,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result.Text != "Hi there." {
		t.Errorf("Unexpected text %q", result.Text)
	}
	if result.ModelID != "claude-sonnet-4-20250514" {
		t.Errorf("Unexpected model %q", result.ModelID)
	}
	if result.InputTokens != 12 || result.OutputTokens != 4 {
		t.Errorf("Unexpected usage %d/%d", result.InputTokens, result.OutputTokens)
	}
	if result.MockMode {
		t.Error("MockMode should not be set for HTTP results")
	}
}

func TestHTTPGenerator_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(successBody))
	}))
	defer srv.Close()

	g := newTestGenerator(srv.URL, 2)

	result, err := g.Generate(context.Background(), &Request{Prompt: "Hello"})
	if err != nil {
		t.Fatalf("Expected retries to recover, got %v", err)
	}
	if result.Text != "Hi there." {
		t.Errorf("Unexpected text %q", result.Text)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestHTTPGenerator_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"type": "invalid_request_error", "message": "bad prompt"}}`))
	}))
	defer srv.Close()

	g := newTestGenerator(srv.URL, 2)

	_, err := g.Generate(context.Background(), &Request{Prompt: "Hello"})
	if err == nil {
		t.Fatal("Expected error for 400 response")
	}

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ProviderError, got %T", err)
	}
	if perr.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", perr.StatusCode)
	}
	if perr.Message != "bad prompt" {
		t.Errorf("Expected upstream message surfaced, got %q", perr.Message)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("Client errors must not be retried, got %d attempts", got)
	}
}

func TestHTTPGenerator_Timeout(t *testing.T) {
	// The server does not notice the client disconnect (the handler never
	// reads the request body), so r.Context() alone would block forever and
	// deadlock srv.Close(). Unblock the handler via done before closing.
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-done:
		}
	}))
	defer srv.Close()
	defer close(done)

	g := NewHTTPGenerator(HTTPConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		ModelID: "m",
		Timeout: 100 * time.Millisecond,
	})

	_, err := g.Generate(context.Background(), &Request{Prompt: "Hello"})
	if err == nil {
		t.Fatal("Expected timeout error")
	}

	var terr *TimeoutError
	if !errors.As(err, &terr) {
		t.Fatalf("Expected *TimeoutError, got %T: %v", err, err)
	}
	if terr.Timeout != 100*time.Millisecond {
		t.Errorf("Expected configured deadline in error, got %s", terr.Timeout)
	}
}

func TestHTTPGenerator_ConcatenatesTextBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"model": "m",
			"content": [
				{"type": "text", "text": "Part one. "},
				{"type": "tool_use", "text": "ignored"},
				{"type": "text", "text": "Part two."}
			],
			"usage": {"input_tokens": 1, "output_tokens": 1}
		}`))
	}))
	defer srv.Close()

	g := newTestGenerator(srv.URL, 0)

	result, err := g.Generate(context.Background(), &Request{Prompt: "x"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.Text != "Part one. Part two." {
		t.Errorf("Unexpected text %q", result.Text)
	}
}
