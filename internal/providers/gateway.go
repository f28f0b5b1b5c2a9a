package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quizflow/internal/config"
	"quizflow/internal/ladder"
	"quizflow/internal/logger"
)

// CompletionAudit is one model attempt as seen by the gateway.
type CompletionAudit struct {
	Operation string
	Provider  string
	Model     string
	Status    string
	ErrorType ErrorType
	Duration  time.Duration
}

// Auditor receives every attempt. Failures to record are logged and ignored.
type Auditor interface {
	RecordCompletion(ctx context.Context, a CompletionAudit) error
}

// Gateway wraps a Provider with an ordered model fallback. It holds no
// per-call state and caches nothing.
type Gateway struct {
	provider Provider
	ref      ProviderRef
	models   []string
	auditor  Auditor
	log      *logger.Logger
}

type GatewayOption func(*Gateway)

func WithAuditor(a Auditor) GatewayOption {
	return func(g *Gateway) { g.auditor = a }
}

func WithLogger(l *logger.Logger) GatewayOption {
	return func(g *Gateway) { g.log = logger.OrNop(l) }
}

func WithProviderRef(ref ProviderRef) GatewayOption {
	return func(g *Gateway) { g.ref = ref }
}

func NewGateway(p Provider, models []string, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		provider: p,
		ref:      ProviderRef{Raw: "custom", Name: "custom"},
		models:   append([]string(nil), models...),
		log:      logger.Nop(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// NewGatewayFromConfig builds the configured provider and candidate list.
func NewGatewayFromConfig(cfg config.Config, log *logger.Logger, auditor Auditor) (*Gateway, error) {
	ref := ParseProviderRef(cfg.LLMProvider)
	p, err := buildProvider(ref, cfg.LLMBaseURL)
	if err != nil {
		return nil, err
	}
	models := ParseModelList(cfg.Models)
	if len(models) == 0 {
		return nil, fmt.Errorf("no candidate models configured")
	}
	opts := []GatewayOption{WithLogger(log), WithProviderRef(ref)}
	if auditor != nil {
		opts = append(opts, WithAuditor(auditor))
	}
	return NewGateway(p, models, opts...), nil
}

func buildProvider(ref ProviderRef, baseURL string) (Provider, error) {
	switch strings.ToLower(ref.Name) {
	case "mock":
		return NewMockProvider(), nil
	case "openai":
		return NewOpenAIProvider(ref.KeyAlias, baseURL), nil
	case "groq":
		return NewGroqProvider(ref.KeyAlias), nil
	case "ollama":
		return NewOllamaProvider(ref.KeyAlias, baseURL), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", ref.Name)
	}
}

// Models returns the static candidate order; the first entry is the default.
func (g *Gateway) Models() []string {
	return append([]string(nil), g.models...)
}

// Complete tries req.Model first (when set) and then every other candidate in
// static order, returning the first non-empty completion. When every candidate
// fails the error wraps ErrAllModelsFailed and the last attempt's error.
func (g *Gateway) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	order := OrderModels(g.models, req.Model)
	steps := make([]ladder.Step[string], 0, len(order))
	for _, model := range order {
		model := model
		steps = append(steps, ladder.Step[string]{
			Name: model,
			Run: func(ctx context.Context) (string, error) {
				return g.attempt(ctx, req, model)
			},
		})
	}
	text, model, err := ladder.First(ctx, steps, func(step string, err error) {
		g.log.Debug("completion candidate failed", "operation", req.Operation, "model", step, "error_type", ClassifyError(err), "error", err)
	})
	if err != nil {
		g.log.Warn("completion gateway exhausted", "operation", req.Operation, "candidates", len(order), "error", err)
		return "", fmt.Errorf("%w: %w", ErrAllModelsFailed, err)
	}
	g.log.Debug("completion succeeded", "operation", req.Operation, "model", model)
	return text, nil
}

func (g *Gateway) attempt(ctx context.Context, req CompletionRequest, model string) (string, error) {
	req.Model = model
	start := time.Now()
	resp, info, err := g.provider.Complete(ctx, req)
	audit := CompletionAudit{
		Operation: req.Operation,
		Provider:  firstNonEmpty(info.Name, g.ref.Name),
		Model:     model,
		Status:    "ok",
		Duration:  time.Since(start),
	}
	if err == nil && strings.TrimSpace(resp.Text) == "" {
		err = fmt.Errorf("model %s: %w", model, ErrNoResponse)
	}
	if err != nil {
		audit.Status = "failed"
		audit.ErrorType = ClassifyError(err)
	}
	g.record(ctx, audit)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (g *Gateway) record(ctx context.Context, a CompletionAudit) {
	if g.auditor == nil {
		return
	}
	if err := g.auditor.RecordCompletion(ctx, a); err != nil {
		g.log.Warn("record completion audit", "model", a.Model, "error", err)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
