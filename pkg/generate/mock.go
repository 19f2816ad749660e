package generate

import (
	"context"
	"fmt"
)

// MockGenerator returns a deterministic canned response without contacting
// any provider. It is selected automatically when no provider endpoint or
// API key is configured, which keeps local development and tests hermetic.
type MockGenerator struct{}

// NewMockGenerator creates a mock generator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Name returns "mock".
func (g *MockGenerator) Name() string {
	return "mock"
}

// Generate returns a canned response echoing the prompt and parameters.
// It never fails, but still honors context cancellation so callers can
// rely on the Generator contract.
func (g *MockGenerator) Generate(ctx context.Context, req *Request) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	text := fmt.Sprintf(
		"[MOCK] Generated response for: %q\n\n"+
			"This is a simulated model response. Configure a provider endpoint "+
			"and API key to get real completions.\n\n"+
			"Parameters used:\n- Max tokens: %d\n- Temperature: %.1f\n- User ID: %s",
		req.Prompt, req.MaxTokens, req.Temperature, req.UserID,
	)

	return &Result{
		Text:     text,
		MockMode: true,
	}, nil
}
