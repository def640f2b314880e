package generation

import (
	"errors"
	"fmt"

	"graphgen/internal/domain"
)

// User-facing messages for each failure class.
const (
	GenericFailureMessage    = "Failed to generate graph due to server error."
	InvalidBoundMessage      = "Please enter a valid positive number for maximum vertices."
	NotConfiguredMessage     = "Please set the graph generation backend URL before generating."
	RequestInProgressMessage = "A graph is already being generated. Please wait for it to finish."
)

// ValidationError reports a bound rejected before dispatch.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("generation: invalid bound %q: %s", e.Input, e.Reason)
}

func (e *ValidationError) Unwrap() error { return domain.ErrInvalidBound }

// ConfigurationError reports that the real backend path cannot be used.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "generation: backend not configured: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return domain.ErrNotConfigured }

// ServiceError is a non-success response from the generation service.
// Message is empty when the service did not provide one.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("generation: service returned status %d", e.Status)
	}
	return fmt.Sprintf("generation: service returned status %d: %s", e.Status, e.Message)
}

func (e *ServiceError) Unwrap() error { return domain.ErrServiceFailure }

// TransportError covers network failures, timeouts and malformed responses.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("generation: transport: %v", e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{domain.ErrTransportFailure, e.Err}
}

// ConcurrentRequestError rejects a submit or reset while a request is in flight.
type ConcurrentRequestError struct{}

func (e *ConcurrentRequestError) Error() string {
	return "generation: a request is already in flight"
}

func (e *ConcurrentRequestError) Unwrap() error { return domain.ErrRequestInProgress }

// UserMessage converts any controller error into the message shown to the user.
func UserMessage(err error) string {
	var svcErr *ServiceError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInvalidBound):
		return InvalidBoundMessage
	case errors.Is(err, domain.ErrNotConfigured):
		return NotConfiguredMessage
	case errors.Is(err, domain.ErrRequestInProgress):
		return RequestInProgressMessage
	case errors.As(err, &svcErr) && svcErr.Message != "":
		return svcErr.Message
	default:
		return GenericFailureMessage
	}
}

// asOutcomeError normalizes a service error into ServiceError or TransportError.
func asOutcomeError(err error) error {
	var (
		svcErr *ServiceError
		trErr  *TransportError
	)
	if errors.As(err, &svcErr) || errors.As(err, &trErr) {
		return err
	}
	return &TransportError{Err: err}
}
