package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// HTTPConfig configures the HTTP generator.
type HTTPConfig struct {
	// Name is the generator identifier used in logs and errors.
	Name string

	// BaseURL is the messages endpoint URL
	// (e.g. "https://api.anthropic.com/v1/messages").
	BaseURL string

	// APIKey authenticates requests to the provider.
	APIKey string

	// ModelID is the model to invoke.
	ModelID string

	// Timeout bounds each generation request end to end, including
	// retries. Default: 30s.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts for transient failures
	// (5xx responses and connection errors). Default: 2.
	MaxRetries int
}

// HTTPGenerator invokes a hosted messages-style completion API over HTTP.
//
// Transient failures (HTTP 5xx, connection errors) are retried with
// exponential backoff inside the configured deadline. Client errors are
// returned immediately as *ProviderError; deadline expiry is returned as
// *TimeoutError.
type HTTPGenerator struct {
	config HTTPConfig
	client *http.Client
	logger *slog.Logger
}

// messagesRequest is the provider wire format for a generation request.
type messagesRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []wireMessage `json:"messages"`
	Metadata    *wireMetadata `json:"metadata,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireMetadata struct {
	UserID string `json:"user_id,omitempty"`
}

// messagesResponse is the provider wire format for a generation response.
type messagesResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewHTTPGenerator creates an HTTP generator from config, applying
// defaults for unset fields.
func NewHTTPGenerator(cfg HTTPConfig) *HTTPGenerator {
	if cfg.Name == "" {
		cfg.Name = "anthropic"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &HTTPGenerator{
		config: cfg,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
		logger: slog.Default().With("component", "generate.http", "provider", cfg.Name),
	}
}

// Name returns the generator's identifier.
func (g *HTTPGenerator) Name() string {
	return g.config.Name
}

// Generate sends the prompt to the provider and returns the normalized
// result. The call is bounded by the configured timeout regardless of the
// caller's context.
func (g *HTTPGenerator) Generate(ctx context.Context, req *Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	body, err := json.Marshal(g.wireRequest(req))
	if err != nil {
		return nil, &ProviderError{
			Provider: g.config.Name,
			Message:  "failed to encode request",
			Cause:    err,
		}
	}

	resp, err := g.doWithRetry(ctx, body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TimeoutError{Provider: g.config.Name, Timeout: g.config.Timeout}
		}
		return nil, err
	}

	return resp, nil
}

// wireRequest converts a Request to the provider wire format.
func (g *HTTPGenerator) wireRequest(req *Request) *messagesRequest {
	wire := &messagesRequest{
		Model:       g.config.ModelID,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages: []wireMessage{
			{Role: "user", Content: req.Prompt},
		},
	}
	if req.UserID != "" {
		wire.Metadata = &wireMetadata{UserID: req.UserID}
	}
	return wire
}

// doWithRetry performs the HTTP call, retrying transient failures with
// exponential backoff while the context allows.
func (g *HTTPGenerator) doWithRetry(ctx context.Context, body []byte) (*Result, error) {
	var lastErr error

	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * 500 * time.Millisecond
			g.logger.Debug("retrying provider request",
				"attempt", attempt,
				"max_retries", g.config.MaxRetries,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, retryable, err := g.doOnce(ctx, body)
		if err == nil {
			return result, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// doOnce performs a single HTTP call. The second return value reports
// whether the failure is worth retrying.
func (g *HTTPGenerator) doOnce(ctx context.Context, body []byte) (*Result, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, false, &ProviderError{
			Provider: g.config.Name,
			Message:  "failed to create request",
			Cause:    err,
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", g.config.APIKey)
	httpReq.Header.Set("Anthropic-Version", "2023-06-01")

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		// Connection-level failures are transient.
		return nil, true, &ProviderError{
			Provider: g.config.Name,
			Message:  "request failed",
			Cause:    err,
		}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 10*1024*1024))
	if err != nil {
		return nil, true, &ProviderError{
			Provider: g.config.Name,
			Message:  "failed to read response",
			Cause:    err,
		}
	}

	if httpResp.StatusCode != http.StatusOK {
		perr := &ProviderError{
			Provider:   g.config.Name,
			StatusCode: httpResp.StatusCode,
			Message:    upstreamMessage(respBody),
		}
		// 5xx responses are transient; everything else is terminal.
		return nil, httpResp.StatusCode >= 500, perr
	}

	var wire messagesResponse
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, false, &ProviderError{
			Provider: g.config.Name,
			Message:  "failed to decode response",
			Cause:    err,
		}
	}
	if wire.Error != nil {
		return nil, false, &ProviderError{
			Provider: g.config.Name,
			Message:  wire.Error.Message,
		}
	}

	var text string
	for _, block := range wire.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	modelID := wire.Model
	if modelID == "" {
		modelID = g.config.ModelID
	}

	return &Result{
		Text:         text,
		ModelID:      modelID,
		InputTokens:  wire.Usage.InputTokens,
		OutputTokens: wire.Usage.OutputTokens,
	}, false, nil
}

// upstreamMessage extracts a short error message from an upstream error
// body, falling back to a generic message.
func upstreamMessage(body []byte) string {
	var wire struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &wire); err == nil && wire.Error.Message != "" {
		return wire.Error.Message
	}
	if len(body) > 0 {
		return fmt.Sprintf("upstream returned %d bytes of unparseable error detail", len(body))
	}
	return "upstream error"
}
