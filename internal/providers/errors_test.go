package providers

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	cases := map[string]ErrorType{
		"insufficient_quota": ErrorQuota,
		"429 rate":           ErrorRate,
		"context too long":   ErrorContext,
		"timeout":            ErrorTransient,
		"bad request":        ErrorPermanent,
	}
	for msg, want := range cases {
		if got := ClassifyError(errors.New(msg)); got != want {
			t.Fatalf("classify %q: got %s want %s", msg, got, want)
		}
	}
}

func TestClassifyWrappedSentinels(t *testing.T) {
	if got := ClassifyError(fmt.Errorf("openai: %w", ErrModelUnavailable)); got != ErrorModelUnavailable {
		t.Fatalf("got %s", got)
	}
	if got := ClassifyError(fmt.Errorf("groq: %w", ErrNoResponse)); got != ErrorNoResponse {
		t.Fatalf("got %s", got)
	}
}

func TestIsModelRejection(t *testing.T) {
	if !isModelRejection(404, "") {
		t.Fatalf("404 must be a model rejection")
	}
	if !isModelRejection(400, `{"error":{"code":"model_not_found"}}`) {
		t.Fatalf("model_not_found body must be a model rejection")
	}
	if isModelRejection(500, "internal error") {
		t.Fatalf("500 is not a model rejection")
	}
}
