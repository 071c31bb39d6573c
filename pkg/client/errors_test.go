package client

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		statusCode int
		expected   ErrorClass
	}{
		{statusCode: 400, expected: ErrorClassClient},
		{statusCode: 401, expected: ErrorClassClient},
		{statusCode: 404, expected: ErrorClassClient},
		{statusCode: 429, expected: ErrorClassClient},
		{statusCode: 500, expected: ErrorClassServer},
		{statusCode: 502, expected: ErrorClassServer},
		{statusCode: 503, expected: ErrorClassServer},
		{statusCode: 304, expected: ErrorClassServer},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			if got := classifyStatus(tt.statusCode); got != tt.expected {
				t.Errorf("classifyStatus(%d) = %q, want %q", tt.statusCode, got, tt.expected)
			}
		})
	}
}

func TestErrorClassOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{
			name:     "upstream error",
			err:      &UpstreamError{ErrorClass: ErrorClassDecode},
			expected: ErrorClassDecode,
		},
		{
			name:     "wrapped upstream error",
			err:      fmt.Errorf("attempt: %w", &UpstreamError{ErrorClass: ErrorClassClient}),
			expected: ErrorClassClient,
		},
		{
			name:     "plain error",
			err:      errors.New("dial tcp: connection refused"),
			expected: ErrorClassNetwork,
		},
		{
			name:     "upstream error without class",
			err:      &UpstreamError{},
			expected: ErrorClassNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorClassOf(tt.err); got != tt.expected {
				t.Errorf("errorClassOf() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestUpstreamError(t *testing.T) {
	t.Run("error without wrapped error", func(t *testing.T) {
		err := &UpstreamError{
			StatusCode: 500,
			ErrorClass: ErrorClassServer,
			Message:    "500 Internal Server Error",
		}

		want := "upstream server error (status 500): 500 Internal Server Error"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
		if err.Unwrap() != nil {
			t.Errorf("Unwrap() = %v, want nil", err.Unwrap())
		}
	})

	t.Run("error with wrapped error", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := &UpstreamError{
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			Err:        cause,
		}

		want := "upstream network error (status 0): request failed: connection refused"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
		if !errors.Is(err, cause) {
			t.Error("errors.Is should find the wrapped cause")
		}
	})
}
