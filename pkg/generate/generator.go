package generate

import "context"

// Request is a provider-agnostic generation request.
type Request struct {
	// Prompt is the validated user prompt.
	Prompt string

	// MaxTokens caps the number of tokens the model may generate.
	MaxTokens int

	// Temperature controls sampling randomness (0.0 to 1.0).
	Temperature float64

	// UserID is an opaque end-user identifier, forwarded for abuse
	// monitoring where the provider supports it.
	UserID string
}

// Result is a provider-agnostic generation result.
type Result struct {
	// Text is the generated text.
	Text string

	// ModelID identifies the model that produced the text. Empty in
	// mock mode.
	ModelID string

	// MockMode is true when the result came from the mock generator.
	MockMode bool

	// InputTokens and OutputTokens are provider-reported token counts,
	// zero when the provider does not report usage.
	InputTokens  int
	OutputTokens int
}

// Generator produces text for a prompt. Implementations are safe for
// concurrent use.
type Generator interface {
	// Generate produces a completion for req. It honors ctx cancellation
	// and deadlines; on deadline expiry it returns a *TimeoutError and on
	// provider failure a *ProviderError.
	Generate(ctx context.Context, req *Request) (*Result, error)

	// Name returns the generator's identifier (e.g. "anthropic", "mock").
	Name() string
}
