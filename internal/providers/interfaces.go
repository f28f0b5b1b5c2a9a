package providers

import "context"

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Key   string `json:"key"`
}

// CompletionRequest is one prompt against one model. For Gateway.Complete the
// Model field is the caller's preferred model and may be empty.
type CompletionRequest struct {
	Operation    string `json:"operation"`
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"system_prompt"`
	Model        string `json:"model"`
}

type CompletionResponse struct {
	Text string `json:"text"`
}

// Provider is the external completion capability.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, ProviderInfo, error)
}

// Completer is what the extraction stages depend on: a prompt in, text out,
// with model fallback handled behind it.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
