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

const openAIBaseURL = "https://api.openai.com/v1"

// ChatProvider talks to any OpenAI-compatible /chat/completions endpoint.
// The model is chosen per request so the gateway can walk its candidates.
type ChatProvider struct {
	name    string
	keyName string
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewOpenAIProvider(keyName, baseURL string) *ChatProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = openAIBaseURL
	}
	return &ChatProvider{
		name:    "openai",
		keyName: keyName,
		apiKey:  resolveKey("OPENAI", keyName),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 90 * time.Second},
	}
}

func (c *ChatProvider) info(model string) ProviderInfo {
	return ProviderInfo{Name: c.name, Key: c.keyName, Model: model}
}

func (c *ChatProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, ProviderInfo, error) {
	info := c.info(req.Model)
	if c.apiKey == "" {
		return CompletionResponse{}, info, fmt.Errorf("%s key missing for alias %q: %w", c.name, c.keyName, ErrNetwork)
	}
	messages := make([]map[string]string, 0, 2)
	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.SystemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.Prompt})
	payload, _ := json.Marshal(map[string]any{
		"model":       req.Model,
		"messages":    messages,
		"temperature": 0.2,
	})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return CompletionResponse{}, info, fmt.Errorf("%s build request: %w", c.name, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return CompletionResponse{}, info, fmt.Errorf("%s completion request: %w: %v", c.name, ErrNetwork, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		if isModelRejection(resp.StatusCode, string(body)) {
			return CompletionResponse{}, info, fmt.Errorf("%s model %q: %w", c.name, req.Model, ErrModelUnavailable)
		}
		return CompletionResponse{}, info, fmt.Errorf("%s completion error %d: %s: %w", c.name, resp.StatusCode, truncate(string(body), 300), ErrBadStatus)
	}
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return CompletionResponse{}, info, fmt.Errorf("decode %s response: %w: %v", c.name, ErrNoResponse, err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return CompletionResponse{}, info, fmt.Errorf("%s returned empty choices: %w", c.name, ErrNoResponse)
	}
	return CompletionResponse{Text: parsed.Choices[0].Message.Content}, info, nil
}

// resolveKey looks up QUIZFLOW_<VENDOR>_KEY_<ALIAS>, then <VENDOR>_API_KEY.
func resolveKey(vendor, alias string) string {
	if alias != "" {
		if v := os.Getenv("QUIZFLOW_" + vendor + "_KEY_" + sanitizeEnvToken(alias)); v != "" {
			return v
		}
	}
	return os.Getenv(vendor + "_API_KEY")
}

func sanitizeEnvToken(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
