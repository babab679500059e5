package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/resume-verifier/internal/apperr"
	"github.com/jonathan/resume-verifier/internal/logger"
	"github.com/jonathan/resume-verifier/internal/observability"
	"github.com/jonathan/resume-verifier/internal/prompts"
	"github.com/jonathan/resume-verifier/internal/schemas"
)

// DefaultAttemptTimeout bounds a single provider call
const DefaultAttemptTimeout = 60 * time.Second

const tracerName = "github.com/jonathan/resume-verifier/internal/llm"

// Extractor turns a prompt into a value that conforms to a closed schema.
// It retries transient provider failures and never retries schema violations.
// An Extractor is safe for concurrent use.
type Extractor struct {
	client  Client
	policy  RetryPolicy
	timeout time.Duration
	limiter *rate.Limiter
	breaker *circuitBreaker
	logger  *zap.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer

	sleep func(ctx context.Context, d time.Duration) error
}

// ExtractorOption configures an Extractor
type ExtractorOption func(*Extractor)

// WithRetryPolicy overrides the retry policy
func WithRetryPolicy(p RetryPolicy) ExtractorOption {
	return func(e *Extractor) { e.policy = p }
}

// WithAttemptTimeout overrides the per-attempt timeout
func WithAttemptTimeout(d time.Duration) ExtractorOption {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithRateLimit limits provider calls to rps per second with the given burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) ExtractorOption {
	return func(e *Extractor) {
		if rps <= 0 {
			e.limiter = nil
			return
		}
		e.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithCircuitBreaker puts a breaker in front of the provider
func WithCircuitBreaker(s BreakerSettings) ExtractorOption {
	return func(e *Extractor) {
		e.breaker = newCircuitBreaker(string(e.client.Provider()), s, e.logger)
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) ExtractorOption {
	return func(e *Extractor) { e.logger = logger.OrNop(l) }
}

// WithMetrics records attempts, retries and failures
func WithMetrics(m *observability.Metrics) ExtractorOption {
	return func(e *Extractor) { e.metrics = m }
}

// NewExtractor creates an Extractor over client. Options apply in order, so put WithLogger first.
func NewExtractor(client Client, opts ...ExtractorOption) (*Extractor, error) {
	if client == nil {
		return nil, apperr.Config("llm.NewExtractor", "an LLM client is required")
	}
	e := &Extractor{
		client:  client,
		policy:  DefaultRetryPolicy(),
		timeout: DefaultAttemptTimeout,
		logger:  zap.NewNop(),
		tracer:  otel.Tracer(tracerName),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Call describes one structured extraction
type Call struct {
	Schema *schemas.Schema
	System string
	User   string
	Tier   ModelTier
	// Model overrides the tier's model
	Model       string
	Temperature float32
}

// Stats reports how an extraction went
type Stats struct {
	Attempts int
	Retries  int
	Elapsed  time.Duration
}

// Extract runs call and decodes the validated reply into out
func (e *Extractor) Extract(ctx context.Context, call Call, out any) (stats Stats, err error) {
	start := time.Now()

	if call.Schema == nil {
		return stats, apperr.Config("llm.Extract", "a target schema is required")
	}
	op := "llm.extract." + call.Schema.Name

	model := call.Model
	if model == "" {
		model = e.client.GetModel(call.Tier)
	}

	ctx, span := e.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("llm.provider", string(e.client.Provider())),
		attribute.String("llm.model", model),
		attribute.String("llm.schema", call.Schema.Name),
		attribute.Float64("llm.temperature", float64(call.Temperature)),
	))
	defer func() {
		stats.Elapsed = time.Since(start)
		e.record(span, call.Schema.Name, stats, err)
		span.End()
	}()

	log := e.logger.With(
		zap.String(logger.FieldSchema, call.Schema.Name),
		zap.String(logger.FieldProvider, string(e.client.Provider())),
		zap.String(logger.FieldModel, model),
	)

	req, err := e.buildRequest(call, model)
	if err != nil {
		return stats, err
	}

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			delay := e.policy.Delay(attempt)
			stats.Retries++
			e.metrics.ExtractionRetry(call.Schema.Name)
			span.AddEvent("retry", trace.WithAttributes(
				attribute.Int("attempt", attempt+1),
				attribute.Int64("delay_ms", delay.Milliseconds()),
			))
			log.Warn("retrying extraction",
				zap.Int(logger.FieldAttempt, attempt+1),
				zap.Duration("delay", delay))
			if err := e.sleep(ctx, delay); err != nil {
				return stats, apperr.Wrap(apperr.KindCanceled, op, "canceled during backoff", err)
			}
		}

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return stats, apperr.Wrap(apperr.KindCanceled, op, "canceled waiting for rate limiter", err)
			}
		}

		stats.Attempts++
		text, err := e.attempt(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				e.metrics.ExtractionAttempt(call.Schema.Name, string(e.client.Provider()), "canceled")
				return stats, apperr.Wrap(apperr.KindCanceled, op, "canceled", ctx.Err())
			}
			if !isRetryableError(err) {
				e.metrics.ExtractionAttempt(call.Schema.Name, string(e.client.Provider()), "rejected")
				log.Debug("provider error is not retryable", zap.Error(err))
				return stats, apperr.Provider(op, err)
			}
			e.metrics.ExtractionAttempt(call.Schema.Name, string(e.client.Provider()), "transient")
			if attempt >= e.policy.MaxRetries {
				log.Warn("extraction retries exhausted",
					zap.Error(err),
					zap.Int("attempts", stats.Attempts),
					zap.Any("breaker", e.breaker.stats()))
				return stats, apperr.Wrap(apperr.KindTransient, op, fmt.Sprintf("failed after %d retries", stats.Retries), err)
			}
			log.Debug("transient provider error", zap.Error(err), zap.Int(logger.FieldAttempt, attempt+1))
			continue
		}

		e.metrics.ExtractionAttempt(call.Schema.Name, string(e.client.Provider()), "ok")
		if err := call.Schema.Decode(CleanJSONBlock(text), out); err != nil {
			log.Debug("reply does not match schema",
				zap.Error(err),
				zap.String("reply", logger.Truncate(text, 500)))
			return stats, apperr.Schema(op, err)
		}

		if stats.Retries > 0 {
			log.Info("extraction succeeded after retry", zap.Int("attempts", stats.Attempts))
		}
		return stats, nil
	}
}

// attempt performs one provider call bounded by the per-attempt timeout
func (e *Extractor) attempt(ctx context.Context, req Request) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	text, err := e.breaker.execute(func() (string, error) {
		return e.client.Generate(attemptCtx, req)
	})
	if err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return "", fmt.Errorf("attempt timed out after %s: %w", e.timeout, context.DeadlineExceeded)
	}
	return text, err
}

func (e *Extractor) buildRequest(call Call, model string) (Request, error) {
	system, err := prompts.Render(prompts.SystemFile, "structured-extraction", map[string]string{
		"SchemaName": call.Schema.Name,
		"Schema":     string(call.Schema.Raw()),
	})
	if err != nil {
		return Request{}, apperr.Wrap(apperr.KindInternal, "llm.extract", "failed to render system prompt", err)
	}
	if call.System != "" {
		system = call.System + "\n\n" + system
	}
	return Request{
		Model: model,
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: call.User},
		},
		Temperature: call.Temperature,
		Schema:      call.Schema,
	}, nil
}

func (e *Extractor) record(span trace.Span, schema string, stats Stats, err error) {
	span.SetAttributes(
		attribute.Int("llm.attempts", stats.Attempts),
		attribute.Int("llm.retries", stats.Retries),
	)
	kind := ""
	if err != nil {
		kind = string(apperr.KindOf(err))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, kind)
	} else {
		span.SetStatus(otelcodes.Ok, "")
	}
	e.metrics.ExtractionDone(schema, kind, stats.Elapsed)
}

// Extract runs call on e and returns the decoded value
func Extract[T any](ctx context.Context, e *Extractor, call Call) (T, error) {
	var out T
	_, err := e.Extract(ctx, call, &out)
	return out, err
}
