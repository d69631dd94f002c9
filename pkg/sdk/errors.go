package curalink

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/curalink/internal/domain"
	chiTransport "github.com/kailas-cloud/curalink/internal/transport/chi"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrInvalidCriteria        = domain.ErrInvalidCriteria
	ErrUnknownArchive         = domain.ErrUnknownArchive
	ErrArchiveAuth            = domain.ErrAuthentication
	ErrArchiveHTTP            = domain.ErrArchiveHTTP
	ErrArchiveUnavailable     = domain.ErrTransport
	ErrAssistantNotConfigured = domain.ErrAssistantNotConfigured
	ErrAssistantProvider      = domain.ErrAssistantProvider
	ErrAssistantAuth          = domain.ErrAssistantAuth
	ErrAssistantQuotaExceeded = domain.ErrAssistantQuotaExceeded
)

var (
	// ErrUnauthorized signals a missing or rejected gateway API key.
	ErrUnauthorized = errors.New("curalink: unauthorized")
	// ErrBadRequest signals a malformed request parameter.
	ErrBadRequest = errors.New("curalink: bad request")
	// ErrSuperseded signals that a newer search in the same Session replaced this one.
	ErrSuperseded = errors.New("curalink: superseded by a newer search")
)

var sentinelByCode = map[chiTransport.ErrorCode]error{
	chiTransport.CodeBadRequest:             ErrBadRequest,
	chiTransport.CodeValidationFailed:       ErrInvalidCriteria,
	chiTransport.CodeUnauthorized:           ErrUnauthorized,
	chiTransport.CodeNotFound:               ErrNotFound,
	chiTransport.CodeUnknownArchive:         ErrUnknownArchive,
	chiTransport.CodeArchiveAuthFailed:      ErrArchiveAuth,
	chiTransport.CodeArchiveError:           ErrArchiveHTTP,
	chiTransport.CodeArchiveUnavailable:     ErrArchiveUnavailable,
	chiTransport.CodeAssistantNotConfigured: ErrAssistantNotConfigured,
	chiTransport.CodeAssistantProviderError: ErrAssistantProvider,
	chiTransport.CodeAssistantAuthFailed:    ErrAssistantAuth,
	chiTransport.CodeAssistantQuotaExceeded: ErrAssistantQuotaExceeded,
}

// APIError is a non-2xx gateway response. It unwraps to the matching sentinel.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("curalink: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("curalink: HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return sentinelByCode[chiTransport.ErrorCode(e.Code)]
}
