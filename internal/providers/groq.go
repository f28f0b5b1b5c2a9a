package providers

import (
	"net/http"
	"time"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// NewGroqProvider returns a ChatProvider for Groq's OpenAI-compatible API.
func NewGroqProvider(keyName string) *ChatProvider {
	return &ChatProvider{
		name:    "groq",
		keyName: keyName,
		apiKey:  resolveKey("GROQ", keyName),
		baseURL: groqBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}
