package providers

import (
	"errors"
	"strings"
)

var (
	ErrNetwork          = errors.New("completion request failed")
	ErrBadStatus        = errors.New("completion service returned error status")
	ErrModelUnavailable = errors.New("model unavailable")
	ErrNoResponse       = errors.New("completion service returned no completion")
	ErrAllModelsFailed  = errors.New("all candidate models failed")
)

type ErrorType string

const (
	ErrorModelUnavailable ErrorType = "model_unavailable"
	ErrorQuota            ErrorType = "quota"
	ErrorRate             ErrorType = "rate"
	ErrorTransient        ErrorType = "transient"
	ErrorPermanent        ErrorType = "permanent"
	ErrorContext          ErrorType = "context"
	ErrorNoResponse       ErrorType = "no_response"
)

func ClassifyError(err error) ErrorType {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrModelUnavailable):
		return ErrorModelUnavailable
	case errors.Is(err, ErrNoResponse):
		return ErrorNoResponse
	}
	e := strings.ToLower(err.Error())
	switch {
	case strings.Contains(e, "quota"), strings.Contains(e, "credit"), strings.Contains(e, "insufficient_quota"):
		return ErrorQuota
	case strings.Contains(e, "rate"), strings.Contains(e, "429"):
		return ErrorRate
	case strings.Contains(e, "context length"), strings.Contains(e, "too long"):
		return ErrorContext
	case strings.Contains(e, "timeout"), strings.Contains(e, "temporarily"), strings.Contains(e, "unavailable"),
		strings.Contains(e, "connection refused"), errors.Is(err, ErrNetwork):
		return ErrorTransient
	default:
		return ErrorPermanent
	}
}

// isModelRejection recognizes the "unknown model" responses of OpenAI
// compatible and Ollama servers.
func isModelRejection(status int, body string) bool {
	if status == 404 {
		return true
	}
	b := strings.ToLower(body)
	return strings.Contains(b, "model_not_found") ||
		strings.Contains(b, "does not exist") ||
		strings.Contains(b, "invalid model") ||
		strings.Contains(b, "unknown model") ||
		(strings.Contains(b, "model") && strings.Contains(b, "not found"))
}
