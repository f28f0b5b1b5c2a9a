package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// OllamaProvider runs completions against a local Ollama server.
type OllamaProvider struct {
	alias   string
	baseURL string
	client  *http.Client
}

func NewOllamaProvider(alias, baseURL string) *OllamaProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = strings.TrimSpace(os.Getenv("QUIZFLOW_OLLAMA_BASE_URL"))
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaProvider{
		alias:   alias,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 180 * time.Second},
	}
}

func (o *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "ollama", Model: req.Model, Key: o.alias}
	messages := make([]map[string]string, 0, 2)
	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.SystemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.Prompt})
	payload, _ := json.Marshal(map[string]any{
		"model":    req.Model,
		"messages": messages,
		"stream":   false,
	})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return CompletionResponse{}, info, fmt.Errorf("ollama build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return CompletionResponse{}, info, fmt.Errorf("ollama chat request: %w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		if isModelRejection(resp.StatusCode, string(body)) {
			return CompletionResponse{}, info, fmt.Errorf("ollama model %q: %w", req.Model, ErrModelUnavailable)
		}
		return CompletionResponse{}, info, fmt.Errorf("ollama chat error %d: %s: %w", resp.StatusCode, truncate(string(body), 300), ErrBadStatus)
	}
	var parsed struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return CompletionResponse{}, info, fmt.Errorf("decode ollama response: %w: %v", ErrNoResponse, err)
	}
	if strings.TrimSpace(parsed.Message.Content) == "" {
		return CompletionResponse{}, info, fmt.Errorf("ollama returned empty message: %w", ErrNoResponse)
	}
	return CompletionResponse{Text: parsed.Message.Content}, info, nil
}
