package providers

import (
	"context"
	"strings"
)

// MockProvider answers deterministically without network access. It is the
// default backend so the service runs end to end before keys are configured;
// extraction falls through to the pattern extractor and placeholders.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, ProviderInfo, error) {
	_ = ctx
	info := ProviderInfo{Name: "mock", Model: req.Model, Key: "mock"}
	op := strings.ToLower(req.Operation)
	text := "[]"
	switch {
	case strings.Contains(op, "validate"):
		text = `{"isCorrect": true}`
	case strings.Contains(op, "enhance"), strings.Contains(op, "answer_options"):
		text = `{}`
	}
	return CompletionResponse{Text: text}, info, nil
}
