package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/curalink/internal/domain"
)

// ErrorCode is a machine-readable error category.
type ErrorCode string

// Error codes returned to clients.
const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeValidationFailed       ErrorCode = "validation_failed"
	CodeUnauthorized           ErrorCode = "unauthorized"
	CodeNotFound               ErrorCode = "not_found"
	CodeUnknownArchive         ErrorCode = "unknown_archive"
	CodeArchiveAuthFailed      ErrorCode = "archive_auth_failed"
	CodeArchiveError           ErrorCode = "archive_error"
	CodeArchiveUnavailable     ErrorCode = "archive_unavailable"
	CodeAssistantNotConfigured ErrorCode = "assistant_not_configured"
	CodeAssistantProviderError ErrorCode = "assistant_provider_error"
	CodeAssistantAuthFailed    ErrorCode = "assistant_auth_failed"
	CodeAssistantQuotaExceeded ErrorCode = "assistant_quota_exceeded"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		detailHandler(domain.ErrInvalidCriteria, http.StatusBadRequest, CodeValidationFailed),
		detailHandler(domain.ErrUnknownArchive, http.StatusBadRequest, CodeUnknownArchive),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrAuthentication, http.StatusUnauthorized, CodeArchiveAuthFailed),
		archiveHTTPHandler,
		transportHandler,
		sentinelHandler(domain.ErrAssistantNotConfigured,
			http.StatusServiceUnavailable, CodeAssistantNotConfigured),
		sentinelHandler(domain.ErrAssistantQuotaExceeded,
			http.StatusTooManyRequests, CodeAssistantQuotaExceeded),
		sentinelHandler(domain.ErrAssistantAuth, http.StatusUnauthorized, CodeAssistantAuthFailed),
		sentinelHandler(domain.ErrAssistantProvider, http.StatusBadGateway, CodeAssistantProviderError),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error
// and answers with the sentinel's own message.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// detailHandler is sentinelHandler for errors whose detail is safe to show:
// the message starts at the sentinel text, dropping the wrapping call chain.
func detailHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := err.Error()
		if i := strings.Index(msg, sentinel.Error()); i > 0 {
			msg = msg[i:]
		}
		writeError(w, status, code, msg)
		return true
	}
}

// archiveHTTPHandler passes the archive's status code through. The archive body stays in the log.
func archiveHTTPHandler(w http.ResponseWriter, err error) bool {
	var he *domain.HTTPError
	if !errors.As(err, &he) {
		return false
	}
	status := he.StatusCode
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	writeError(w, status, CodeArchiveError, fmt.Sprintf("archive returned HTTP %d", he.StatusCode))
	return true
}

// transportHandler answers with the network failure, without the wrapping call chain.
func transportHandler(w http.ResponseWriter, err error) bool {
	var te *domain.TransportError
	if !errors.As(err, &te) {
		if !errors.Is(err, domain.ErrTransport) {
			return false
		}
		writeError(w, http.StatusBadGateway, CodeArchiveUnavailable, domain.ErrTransport.Error())
		return true
	}
	writeError(w, http.StatusBadGateway, CodeArchiveUnavailable, te.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
