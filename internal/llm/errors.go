package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ConfigurationError reports a model configuration that cannot be used, most
// commonly a missing credential. It is returned before any network call.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// ModelUnavailableError is returned when text completion exhausted its retry
// budget on transient failures.
type ModelUnavailableError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("model unavailable after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }

// SchemaValidationError is returned when structured output could not be
// decoded into the requested schema, including after correction prompts.
type SchemaValidationError struct {
	Schema   string
	Attempts int
	Output   string
	Err      error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("output does not match schema %q after %d attempt(s): %v", e.Schema, e.Attempts, e.Err)
}

func (e *SchemaValidationError) Unwrap() error { return e.Err }

// ProviderError is a failed call to a model provider. StatusCode is 0 when
// no HTTP response was received.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Transient reports whether the call may succeed if repeated.
func (e *ProviderError) Transient() bool {
	if errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded) {
		return false
	}
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	}
	return false
}

// IsTransient reports whether err is a ProviderError worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient()
	}
	return false
}
