package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	mu      sync.Mutex
	replies map[string]func() (string, error)
	calls   []string
}

func (s *scriptedProvider) Complete(_ context.Context, req CompletionRequest) (CompletionResponse, ProviderInfo, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req.Model)
	reply, ok := s.replies[req.Model]
	s.mu.Unlock()
	info := ProviderInfo{Name: "scripted", Model: req.Model}
	if !ok {
		return CompletionResponse{}, info, fmt.Errorf("model %q: %w", req.Model, ErrModelUnavailable)
	}
	text, err := reply()
	return CompletionResponse{Text: text}, info, err
}

type recordingAuditor struct {
	mu     sync.Mutex
	audits []CompletionAudit
	err    error
}

func (r *recordingAuditor) RecordCompletion(_ context.Context, a CompletionAudit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audits = append(r.audits, a)
	return r.err
}

func TestGatewayFallsBackAfterNetworkError(t *testing.T) {
	payload := `[{"text":"a?"},{"text":"b?"},{"text":"c?"}]`
	p := &scriptedProvider{replies: map[string]func() (string, error){
		"m1": func() (string, error) { return "", fmt.Errorf("dial tcp: %w", ErrNetwork) },
		"m2": func() (string, error) { return payload, nil },
	}}
	g := NewGateway(p, []string{"m1", "m2", "m3"})

	out, err := g.Complete(context.Background(), CompletionRequest{Operation: "extract", Prompt: "p"})
	require.NoError(t, err)
	require.Equal(t, payload, out)
	require.Equal(t, []string{"m1", "m2"}, p.calls)
}

func TestGatewayPreferredModelFirst(t *testing.T) {
	p := &scriptedProvider{replies: map[string]func() (string, error){
		"m1": func() (string, error) { return "one", nil },
		"m3": func() (string, error) { return "three", nil },
	}}
	g := NewGateway(p, []string{"m1", "m2", "m3"})
	out, err := g.Complete(context.Background(), CompletionRequest{Prompt: "p", Model: "m3"})
	require.NoError(t, err)
	require.Equal(t, "three", out)
	require.Equal(t, []string{"m3"}, p.calls)
}

func TestGatewaySkipsInvalidModelAndEmptyResponse(t *testing.T) {
	p := &scriptedProvider{replies: map[string]func() (string, error){
		"m2": func() (string, error) { return "   ", nil },
		"m3": func() (string, error) { return "ok", nil },
	}}
	audit := &recordingAuditor{}
	g := NewGateway(p, []string{"m1", "m2", "m3"}, WithAuditor(audit))
	out, err := g.Complete(context.Background(), CompletionRequest{Operation: "validate", Prompt: "p"})
	require.NoError(t, err)
	require.Equal(t, "ok", out)
	require.Len(t, audit.audits, 3)
	require.Equal(t, ErrorModelUnavailable, audit.audits[0].ErrorType)
	require.Equal(t, ErrorNoResponse, audit.audits[1].ErrorType)
	require.Equal(t, "ok", audit.audits[2].Status)
	require.Equal(t, "validate", audit.audits[2].Operation)
}

func TestGatewayAllFailAggregates(t *testing.T) {
	last := errors.New("503 temporarily unavailable")
	p := &scriptedProvider{replies: map[string]func() (string, error){
		"m1": func() (string, error) { return "", fmt.Errorf("first: %w", ErrNetwork) },
		"m2": func() (string, error) { return "", last },
	}}
	g := NewGateway(p, []string{"m1", "m2"})
	_, err := g.Complete(context.Background(), CompletionRequest{Prompt: "p"})
	require.ErrorIs(t, err, ErrAllModelsFailed)
	require.ErrorIs(t, err, last)
}

func TestGatewayAuditFailureDoesNotFailCall(t *testing.T) {
	p := &scriptedProvider{replies: map[string]func() (string, error){
		"m1": func() (string, error) { return "fine", nil },
	}}
	g := NewGateway(p, []string{"m1"}, WithAuditor(&recordingAuditor{err: errors.New("db down")}))
	out, err := g.Complete(context.Background(), CompletionRequest{Prompt: "p"})
	require.NoError(t, err)
	require.Equal(t, "fine", out)
}

func TestNewGatewayFromConfigUnsupported(t *testing.T) {
	_, err := buildProvider(ParseProviderRef("nope"), "")
	require.Error(t, err)
	p, err := buildProvider(ParseProviderRef("groq:alias1"), "")
	require.NoError(t, err)
	require.NotNil(t, p)
}
