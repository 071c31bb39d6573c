package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrUpstreamUnavailable is returned when all retry attempts are exhausted.
	// The wrapped message carries the last underlying error.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")
)

// UpstreamError represents a failed attempt against the breed API.
type UpstreamError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ErrorClass represents a classification of failed attempts. Every class is
// retried the same way; the class only labels logs and metrics.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents a 2xx response whose body is not a breed list.
	ErrorClassDecode ErrorClass = "decode"
)

// classifyStatus maps an unexpected HTTP status to an error class.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		// 1xx/3xx that the transport did not resolve
		return ErrorClassServer
	}
}

// errorClassOf extracts the class of an attempt error for metric labels.
func errorClassOf(err error) ErrorClass {
	var upErr *UpstreamError
	if errors.As(err, &upErr) && upErr.ErrorClass != "" {
		return upErr.ErrorClass
	}
	return ErrorClassNetwork
}
