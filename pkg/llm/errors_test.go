package llm

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error_WithStatusCode(t *testing.T) {
	err := &Error{
		Type:       ErrorTypeEndpoint,
		Message:    "server error",
		StatusCode: 503,
	}

	result := err.Error()
	if !strings.Contains(result, "HTTP 503") {
		t.Errorf("expected error message to contain 'HTTP 503', got: %s", result)
	}
	if !strings.Contains(result, "server error") {
		t.Errorf("expected error message to contain 'server error', got: %s", result)
	}
}

func TestError_Error_WithModel(t *testing.T) {
	err := &Error{
		Type:    ErrorTypeModel,
		Message: "model not found",
		Model:   "gpt-4o-mini",
	}

	result := err.Error()
	if !strings.Contains(result, "model=gpt-4o-mini") {
		t.Errorf("expected error message to contain model name, got: %s", result)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewError(ErrorTypeEndpoint, "request failed", true, cause)

	if !errors.Is(err, cause) {
		t.Error("expected Unwrap to expose the cause via errors.Is")
	}
}

func TestError_IsRetryable(t *testing.T) {
	retryable := NewError(ErrorTypeEndpoint, "timeout", true, nil)
	if !retryable.IsRetryable() {
		t.Error("expected retryable error to report IsRetryable() == true")
	}

	permanent := NewError(ErrorTypeAuth, "bad key", false, nil)
	if permanent.IsRetryable() {
		t.Error("expected permanent error to report IsRetryable() == false")
	}
}

func TestClassifyError_Auth(t *testing.T) {
	err := errors.New("401 Unauthorized: invalid api key")
	result := ClassifyError(err)

	if result.Type != ErrorTypeAuth {
		t.Errorf("expected ErrorTypeAuth, got %s", result.Type)
	}
	if result.Retryable {
		t.Error("expected auth errors to be non-retryable")
	}
	if result.StatusCode != 401 {
		t.Errorf("expected status code 401, got %d", result.StatusCode)
	}
}

func TestClassifyError_ModelNotFound(t *testing.T) {
	err := errors.New("the model 'gpt-9' does not exist")
	result := ClassifyError(err)

	if result.Type != ErrorTypeModel {
		t.Errorf("expected ErrorTypeModel, got %s", result.Type)
	}
	if result.Retryable {
		t.Error("expected model errors to be non-retryable")
	}
}

func TestClassifyError_ConnectionRefused(t *testing.T) {
	err := errors.New("dial tcp: connection refused")
	result := ClassifyError(err)

	if result.Type != ErrorTypeEndpoint {
		t.Errorf("expected ErrorTypeEndpoint, got %s", result.Type)
	}
	if !result.Retryable {
		t.Error("expected connection errors to be retryable")
	}
}

func TestClassifyError_Timeout(t *testing.T) {
	err := errors.New("context deadline exceeded")
	result := ClassifyError(err)

	if result.Type != ErrorTypeEndpoint {
		t.Errorf("expected ErrorTypeEndpoint, got %s", result.Type)
	}
	if !result.Retryable {
		t.Error("expected timeout errors to be retryable")
	}
}

func TestClassifyError_RateLimited(t *testing.T) {
	tests := []struct {
		name   string
		errStr string
	}{
		{"HTTP 429", "HTTP 429 Too Many Requests"},
		{"rate limit text", "rate limit exceeded"},
		{"too many requests", "too many requests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyError(errors.New(tt.errStr))
			if result.Type != ErrorTypeRateLimited {
				t.Errorf("expected ErrorTypeRateLimited, got %s", result.Type)
			}
			if !result.Retryable {
				t.Error("expected rate-limit errors to be retryable")
			}
		})
	}
}

func TestClassifyError_ServerError(t *testing.T) {
	err := errors.New("HTTP 503 Service Unavailable")
	result := ClassifyError(err)

	if result.Type != ErrorTypeEndpoint {
		t.Errorf("expected ErrorTypeEndpoint, got %s", result.Type)
	}
	if !result.Retryable {
		t.Error("expected 5xx errors to be retryable")
	}
}

func TestClassifyError_PreservesExistingError(t *testing.T) {
	original := NewError(ErrorTypeAuth, "already classified", false, nil)
	result := ClassifyError(original)

	if result != original {
		t.Error("expected ClassifyError to return the same *Error instance unchanged")
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(errors.New("plain error")) {
		t.Error("expected plain errors to be non-retryable")
	}
	if !IsRetryable(NewError(ErrorTypeEndpoint, "timeout", true, nil)) {
		t.Error("expected retryable *Error to report true")
	}
}

