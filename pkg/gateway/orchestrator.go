package gateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"parley-hq/parley/pkg/generate"
	"parley-hq/parley/pkg/governance"
	"parley-hq/parley/pkg/governance/conversation"
	"parley-hq/parley/pkg/governance/ratelimit"
	"parley-hq/parley/pkg/telemetry/metrics"
	"parley-hq/parley/pkg/usage"
)

// Orchestrator runs the request pipeline. All collaborators are required
// except Recorder and Metrics, which may be nil (disabled).
type Orchestrator struct {
	validator *governance.Validator
	filter    *governance.ContentFilter
	limiter   *ratelimit.Limiter
	history   *conversation.Store
	generator generate.Generator
	recorder  *usage.Recorder
	metrics   *metrics.Collector
	refusal   string
	timeout   time.Duration
	logger    *slog.Logger
}

// OrchestratorConfig assembles an Orchestrator.
type OrchestratorConfig struct {
	Validator *governance.Validator
	Filter    *governance.ContentFilter
	Limiter   *ratelimit.Limiter
	History   *conversation.Store
	Generator generate.Generator

	// Recorder receives per-request usage records. Optional.
	Recorder *usage.Recorder

	// Metrics receives pipeline counters. Optional.
	Metrics *metrics.Collector

	// Refusal is the canned text substituted when generated output is
	// blocked by the content filter.
	Refusal string

	// Timeout bounds each provider call. Default 30s.
	Timeout time.Duration
}

// DefaultRefusal is the canned text substituted for blocked output.
const DefaultRefusal = "I cannot provide that type of content. Please try a different request."

// NewOrchestrator creates an Orchestrator from cfg.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.Refusal == "" {
		cfg.Refusal = DefaultRefusal
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Orchestrator{
		validator: cfg.Validator,
		filter:    cfg.Filter,
		limiter:   cfg.Limiter,
		history:   cfg.History,
		generator: cfg.Generator,
		recorder:  cfg.Recorder,
		metrics:   cfg.Metrics,
		refusal:   cfg.Refusal,
		timeout:   cfg.Timeout,
		logger:    slog.Default().With("component", "gateway.orchestrator"),
	}
}

// Process runs the pipeline for one parsed request and returns its
// terminal result. It never returns an error; every failure mode maps to
// an outcome in the result.
//
// No lock is held across the provider call: history is appended before
// generation and again after, so a slow provider never blocks governance
// state for other requests.
func (o *Orchestrator) Process(ctx context.Context, req *GenerationRequest, prov Provenance) *PipelineResult {
	start := time.Now()
	result := o.process(ctx, req, prov, start)

	elapsed := time.Since(start)
	if o.metrics != nil {
		o.metrics.RecordRequest(string(result.Outcome), elapsed)
	}
	return result
}

func (o *Orchestrator) process(ctx context.Context, req *GenerationRequest, prov Provenance, start time.Time) *PipelineResult {
	text := req.Text()

	// Validation: emptiness, length bound, injection heuristics.
	verdict := o.validator.Validate(text)
	if verdict.Suspicious {
		o.logger.Warn("suspicious input flagged",
			"user_id", req.UserID,
			"source", prov.SourceAddr,
		)
		if o.metrics != nil {
			o.metrics.RecordSuspicious()
		}
	}
	if !verdict.Valid {
		return errorResult(OutcomeInvalidRequest, verdict.Err, nil)
	}

	// Inbound content policy. A block ends the request before any model
	// invocation and is recorded as a filtered usage event.
	if check := o.filter.Check(text); check.Blocked {
		o.logger.Info("request blocked by content policy",
			"user_id", req.UserID,
			"severity", check.Severity,
			"patterns", check.Patterns,
		)
		if o.metrics != nil {
			o.metrics.RecordFilterBlock(string(check.Severity), "request")
		}
		o.record(&usage.Record{
			UserID:         req.UserID,
			InputTokens:    verdict.EstimatedTokens,
			ResponseTimeMS: time.Since(start).Milliseconds(),
			Filtered:       true,
		})
		return errorResult(OutcomePolicyBlocked, check.Reason, &ErrorDetails{
			Reason:           check.Reason,
			Severity:         string(check.Severity),
			DetectedPatterns: check.Patterns,
		})
	}

	// Identity and admission. The conversation key doubles as the
	// rate-limit key so history and quota stay correlated.
	key := conversation.DeriveKey(prov.SourceAddr, prov.ClientSignature)

	allowed := o.limiter.Allow(key)
	rl := &RateLimitState{
		Limit:     o.limiter.Limit(),
		Remaining: o.limiter.Remaining(key),
		Reset:     o.limiter.Reset(key),
	}
	if !allowed {
		o.logger.Info("request rate limited",
			"user_id", req.UserID,
			"conversation", key,
		)
		if o.metrics != nil {
			o.metrics.RecordRateLimited()
		}
		res := errorResult(OutcomeRateLimited, "Rate limit exceeded. Please try again later.", nil)
		res.RateLimit = rl
		return res
	}

	o.history.Append(key, conversation.Message{
		Role:      conversation.RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	})

	// Provider call under a bounded deadline.
	genCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	genResult, err := o.generator.Generate(genCtx, &generate.Request{
		Prompt:      text,
		MaxTokens:   req.MaxTokens,
		Temperature: req.EffectiveTemperature(),
		UserID:      req.UserID,
	})
	if err != nil {
		res := o.providerFailure(err, req)
		res.RateLimit = rl
		return res
	}

	// Outbound content policy. A block here does not fail the request;
	// the output is replaced with a fixed refusal.
	filterStatus := FilterStatusPassed
	replyText := genResult.Text
	if check := o.filter.Check(replyText); check.Blocked {
		o.logger.Info("generated output replaced by content policy",
			"user_id", req.UserID,
			"severity", check.Severity,
		)
		if o.metrics != nil {
			o.metrics.RecordFilterBlock(string(check.Severity), "response")
		}
		replyText = o.refusal
		filterStatus = FilterStatusFiltered
	}

	o.history.Append(key, conversation.Message{
		Role:      conversation.RoleAssistant,
		Content:   replyText,
		Timestamp: time.Now(),
	})

	inputTokens := genResult.InputTokens
	if inputTokens == 0 {
		inputTokens = verdict.EstimatedTokens
	}
	outputTokens := genResult.OutputTokens
	if outputTokens == 0 {
		outputTokens = governance.EstimateTokens(replyText)
	}

	elapsedMS := time.Since(start).Milliseconds()
	if o.metrics != nil {
		o.metrics.RecordTokens(inputTokens, outputTokens)
	}
	o.record(&usage.Record{
		UserID:         req.UserID,
		InputTokens:    inputTokens,
		OutputTokens:   outputTokens,
		ResponseTimeMS: elapsedMS,
		Filtered:       filterStatus == FilterStatusFiltered,
	})

	return &PipelineResult{
		Outcome: OutcomeSuccess,
		Response: &GenerationResponse{
			GeneratedText: replyText,
			Metadata: Metadata{
				InputTokens:         inputTokens,
				OutputTokens:        outputTokens,
				ResponseTimeMS:      elapsedMS,
				ModelID:             genResult.ModelID,
				MockMode:            genResult.MockMode,
				UserID:              req.UserID,
				ContentFilterStatus: filterStatus,
			},
		},
		RateLimit: rl,
	}
}

// providerFailure maps a generator error to its outcome. Clients get a
// generic message; the specific cause stays in the logs.
func (o *Orchestrator) providerFailure(err error, req *GenerationRequest) *PipelineResult {
	var timeoutErr *generate.TimeoutError
	if errors.As(err, &timeoutErr) || errors.Is(err, context.DeadlineExceeded) {
		o.logger.Error("provider request timed out",
			"user_id", req.UserID,
			"error", err,
		)
		return errorResult(OutcomeUpstreamTimeout, "The model provider did not respond in time.", nil)
	}

	var provErr *generate.ProviderError
	if errors.As(err, &provErr) {
		o.logger.Error("provider request failed",
			"user_id", req.UserID,
			"provider", provErr.Provider,
			"status", provErr.StatusCode,
			"error", err,
		)
		return errorResult(OutcomeUpstreamError, "The model provider returned an error.", nil)
	}

	o.logger.Error("generation failed",
		"user_id", req.UserID,
		"error", err,
	)
	return errorResult(OutcomeInternalError, "Internal server error.", nil)
}

// record enqueues a usage record when a recorder is configured.
func (o *Orchestrator) record(rec *usage.Record) {
	if o.recorder != nil {
		o.recorder.Record(rec)
	}
}
