package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAuthentication signals a failed token exchange with the identity provider.
	ErrAuthentication = errors.New("authentication failed")
	// ErrArchiveHTTP signals a non-success status from the archive.
	ErrArchiveHTTP = errors.New("archive http error")
	// ErrTransport signals that no response was received from the archive.
	ErrTransport = errors.New("archive transport error")
	// ErrUnknownArchive signals a target service that is not configured.
	ErrUnknownArchive = errors.New("unknown archive")
	// ErrInvalidCriteria signals search criteria that fail validation.
	ErrInvalidCriteria = errors.New("invalid search criteria")
	// ErrAssistantNotConfigured signals that no chat model is configured.
	ErrAssistantNotConfigured = errors.New("assistant not configured")
	// ErrAssistantProvider signals a chat model provider failure.
	ErrAssistantProvider = errors.New("assistant provider error")
	// ErrAssistantAuth signals that the chat model provider rejected the API key.
	ErrAssistantAuth = errors.New("assistant api key rejected")
	// ErrAssistantQuotaExceeded signals that the assistant token budget is exhausted.
	ErrAssistantQuotaExceeded = errors.New("assistant token budget exceeded")
)

// HTTPError wraps ErrArchiveHTTP with the status code returned by the archive.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) Unwrap() error { return ErrArchiveHTTP }

// NewHTTPError creates an archive HTTP error.
func NewHTTPError(status int, body string) error {
	return &HTTPError{StatusCode: status, Body: body}
}

// TransportError wraps ErrTransport together with the underlying network failure.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTransport.Error(), e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// NewTransportError creates an archive transport error.
func NewTransportError(err error) error {
	return &TransportError{Err: err}
}
