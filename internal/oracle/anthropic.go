package oracle

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sells-group/jeopardy/internal/model"
	"github.com/sells-group/jeopardy/internal/resilience"
	"github.com/sells-group/jeopardy/pkg/anthropic"
)

const tracerName = "github.com/sells-group/jeopardy/internal/oracle"

// Config controls model selection and retry for the Anthropic oracle.
type Config struct {
	Model            string
	MaxTokens        int64
	WebSearchMaxUses int64
	Retry            resilience.Policy
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Model:            "claude-sonnet-4-5-20250929",
		MaxTokens:        1024,
		WebSearchMaxUses: 3,
		Retry:            resilience.DefaultPolicy(),
	}
}

// Anthropic implements Oracle on top of the Anthropic Messages API.
type Anthropic struct {
	client anthropic.Client
	cfg    Config
	tracer trace.Tracer
}

// NewAnthropic wraps client as an Oracle. Zero config fields fall back to
// DefaultConfig.
func NewAnthropic(client anthropic.Client, cfg Config) *Anthropic {
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.WebSearchMaxUses <= 0 {
		cfg.WebSearchMaxUses = def.WebSearchMaxUses
	}
	if cfg.Retry.ShouldRetry == nil {
		cfg.Retry.ShouldRetry = resilience.TransientWith(anthropic.StatusCode)
	}
	return &Anthropic{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer(tracerName),
	}
}

// NewClient builds the provider client used in production: traced HTTP
// transport and SDK retries disabled, since retry is owned by the oracle.
func NewClient(apiKey string, opts ...option.RequestOption) anthropic.Client {
	httpClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	base := []option.RequestOption{
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	return anthropic.NewClient(apiKey, append(base, opts...)...)
}

// GenerateAnswer asks the model, with web search available, for a short
// answer to the clue.
func (a *Anthropic) GenerateAnswer(ctx context.Context, question, category string) (string, error) {
	ctx, span := a.tracer.Start(ctx, "oracle.generate_answer", trace.WithAttributes(
		attribute.String("jeopardy.category", category),
		attribute.String("llm.model", a.cfg.Model),
	))
	defer span.End()

	resp, err := a.create(ctx, "generate_answer", anthropic.MessageRequest{
		Model:     a.cfg.Model,
		MaxTokens: a.cfg.MaxTokens,
		System:    contestantPrompt,
		Messages:  []anthropic.Message{{Role: "user", Content: contestantInput(question, category)}},
		WebSearch: &anthropic.WebSearch{MaxUses: a.cfg.WebSearchMaxUses},
	})
	if err != nil {
		recordError(span, err)
		return "", eris.Wrap(err, "oracle: generate answer")
	}

	answer, ok := resp.FinalText()
	if !ok {
		recordError(span, ErrNoAnswer)
		return "", eris.Wrapf(ErrNoAnswer, "stop reason %q", resp.StopReason)
	}
	span.SetAttributes(attribute.String("jeopardy.ai_answer", answer))
	return answer, nil
}

// JudgeAnswer asks the model for a structured verdict on givenAnswer.
func (a *Anthropic) JudgeAnswer(ctx context.Context, question, correctAnswer, givenAnswer string) (model.Verdict, error) {
	ctx, span := a.tracer.Start(ctx, "oracle.judge_answer", trace.WithAttributes(
		attribute.String("llm.model", a.cfg.Model),
	))
	defer span.End()

	resp, err := a.create(ctx, "judge_answer", anthropic.MessageRequest{
		Model:        a.cfg.Model,
		MaxTokens:    a.cfg.MaxTokens,
		System:       judgePrompt,
		Messages:     []anthropic.Message{{Role: "user", Content: judgeInput(question, correctAnswer, givenAnswer)}},
		OutputSchema: verdictSchema,
	})
	if err != nil {
		recordError(span, err)
		return model.Verdict{}, eris.Wrap(err, "oracle: judge answer")
	}

	verdict, err := parseVerdict(resp)
	if err != nil {
		recordError(span, err)
		return model.Verdict{}, err
	}
	span.SetAttributes(attribute.Bool("jeopardy.is_correct", verdict.IsCorrect))
	return verdict, nil
}

func (a *Anthropic) create(ctx context.Context, operation string, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	policy := a.cfg.Retry
	if policy.OnRetry == nil {
		policy.OnRetry = resilience.RetryLogger("anthropic", operation)
	}

	resp, err := resilience.DoVal(ctx, policy, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return a.client.CreateMessage(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	resp.Usage.LogCost(a.cfg.Model, operation)
	return resp, nil
}

// rawVerdict uses pointers so absent fields are distinguishable from false/"".
type rawVerdict struct {
	IsCorrect *bool   `json:"is_correct"`
	Reason    *string `json:"reason"`
}

func parseVerdict(resp *anthropic.MessageResponse) (model.Verdict, error) {
	text, ok := resp.FirstText()
	if !ok {
		return model.Verdict{}, eris.Wrap(ErrUndetermined, "empty response")
	}

	var raw rawVerdict
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		zap.L().Debug("oracle: unreadable verdict", zap.String("text", text), zap.Error(err))
		return model.Verdict{}, eris.Wrap(ErrUndetermined, "decode verdict")
	}
	if raw.IsCorrect == nil || raw.Reason == nil {
		return model.Verdict{}, eris.Wrap(ErrUndetermined, "verdict missing fields")
	}
	return model.Verdict{IsCorrect: *raw.IsCorrect, Reason: *raw.Reason}, nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
