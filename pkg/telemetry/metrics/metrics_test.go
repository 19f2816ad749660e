package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// ============================================================================
// Collector Tests
// ============================================================================

func TestCollector_RecordRequest(t *testing.T) {
	c := NewCollector(Config{Enabled: true}, nil)

	c.RecordRequest("success", 100*time.Millisecond)
	c.RecordRequest("success", 200*time.Millisecond)
	c.RecordRequest("rate_limited", time.Millisecond)

	if got := testutil.ToFloat64(c.requestsTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("Expected 2 success requests, got %v", got)
	}
	if got := testutil.ToFloat64(c.requestsTotal.WithLabelValues("rate_limited")); got != 1 {
		t.Errorf("Expected 1 rate_limited request, got %v", got)
	}
}

func TestCollector_RecordTokens(t *testing.T) {
	c := NewCollector(Config{Enabled: true}, nil)

	c.RecordTokens(10, 25)
	c.RecordTokens(5, 5)

	if got := testutil.ToFloat64(c.tokensTotal.WithLabelValues("input")); got != 15 {
		t.Errorf("Expected 15 input tokens, got %v", got)
	}
	if got := testutil.ToFloat64(c.tokensTotal.WithLabelValues("output")); got != 30 {
		t.Errorf("Expected 30 output tokens, got %v", got)
	}
}

func TestCollector_RecordFilterBlock(t *testing.T) {
	c := NewCollector(Config{Enabled: true}, nil)

	c.RecordFilterBlock("HIGH", "request")
	c.RecordFilterBlock("MEDIUM", "response")

	if got := testutil.ToFloat64(c.filterBlocks.WithLabelValues("HIGH", "request")); got != 1 {
		t.Errorf("Expected 1 HIGH request block, got %v", got)
	}
	if got := testutil.ToFloat64(c.filterBlocks.WithLabelValues("MEDIUM", "response")); got != 1 {
		t.Errorf("Expected 1 MEDIUM response block, got %v", got)
	}
}

func TestCollector_DisabledIsNoOp(t *testing.T) {
	c := NewCollector(Config{Enabled: false}, nil)

	c.RecordRequest("success", time.Second)
	c.RecordTokens(100, 100)
	c.RecordRateLimited()
	c.RecordSuspicious()

	if got := testutil.ToFloat64(c.requestsTotal.WithLabelValues("success")); got != 0 {
		t.Errorf("Expected no recording when disabled, got %v", got)
	}
	if got := testutil.ToFloat64(c.rateLimitedTotal); got != 0 {
		t.Errorf("Expected no recording when disabled, got %v", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(Config{Enabled: true}, nil)
	c.RecordRequest("success", 50*time.Millisecond)
	c.RecordRateLimited()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from scrape endpoint, got %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "parley_gateway_requests_total") {
		t.Error("Expected requests_total in scrape output")
	}
	if !strings.Contains(body, "parley_gateway_rate_limited_total") {
		t.Error("Expected rate_limited_total in scrape output")
	}
}
