package notify

// error_response.go implements the receiver's error response format and the
// mapping from lower level errors to the HTTP responses returned to clients.

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/storesignal-io/storesignal/internal/appstore"
	"github.com/storesignal-io/storesignal/internal/logger"
)

// ErrorResponse is the JSON error body returned by the receiver API
type ErrorResponse struct {

	// The HTTP method used to make the request e.g. GET, POST, etc
	HTTPMethod string `json:"httpMethod"`

	// The URI that was requested
	RequestURI string `json:"requestUri"`

	// The HTTP status code returned
	StatusCode int `json:"statusCode"`

	// A standard short description corresponding to the HTTP status code
	StatusCodeText string `json:"statusCodeText"`

	// A long description corresponding to the HTTP status code with additional information
	StatusCodeMessage string `json:"statusCodeMessage,omitempty"`

	// A unique identifier to the HTTP request within the scope of the API provider
	ProviderCorrelationReference string `json:"providerCorrelationReference,omitempty"`

	// The DateTime corresponding to the error occurring
	ErrorDateTime string `json:"errorDateTime"`

	// An array of errors providing more detail about the root cause
	Errors []DetailedError `json:"errors"`
}

// DetailedError represents a detailed error in the error response
type DetailedError struct {
	// error code used by the receiver: 7000-7999 for technical errors, 8000-8999 for functional errors
	ErrorCode        ErrorCode `json:"errorCode"`
	ErrorCodeText    string    `json:"errorCodeText"`
	ErrorCodeMessage string    `json:"errorCodeMessage"`
}

// MapErrorToResponse maps notify.NotifyError, appstore.VerificationError or
// generic errors to an API error response.
//
// The error code text is sanitized for the response, but the full error
// message is logged server-side. The mapping also establishes the
// appropriate HTTP status code based on the error type.
//
// Call this function to set up the error response before sending it to the
// client (using RespondWithErrorResponse).
func MapErrorToResponse(err error, r *http.Request) *ErrorResponse {
	requestID := middleware.GetReqID(r.Context())

	// Try to extract the most specific error type first (notify.NotifyError)
	var notifyErr *NotifyError
	if errors.As(err, &notifyErr) {
		return errorResponseFromNotify(notifyErr, r, requestID)
	}

	// Then try appstore.VerificationError
	var verificationErr *appstore.VerificationError
	if errors.As(err, &verificationErr) {
		return errorResponseFromAppStore(verificationErr, r, requestID)
	}

	// fallback - this is not expected - if it happens, return an internal
	// error response and log the unmapped error
	reqLogger := logger.ContextRequestLogger(r.Context())
	reqLogger.Error("BUG: Unmapped error type in MapErrorToResponse",
		slog.String("error_type", fmt.Sprintf("%T", err)),
		slog.String("error", err.Error()),
		slog.String("request_id", requestID),
	)
	return newErrorResponse(r, requestID, http.StatusInternalServerError, "Internal Error", DetailedError{
		ErrorCode:        ErrCodeInternalError,
		ErrorCodeText:    "Internal Error",
		ErrorCodeMessage: "An internal error occurred",
	})
}

// errorResponseFromNotify maps notify.NotifyError to API error responses
// the error code text is sanitized for the response, but the full error message is logged server-side
func errorResponseFromNotify(err *NotifyError, r *http.Request, requestID string) *ErrorResponse {
	var statusCode int
	var errorCodeText string

	// Map error code to HTTP status and text
	switch err.Code() {
	case ErrCodeMalformedRequest:
		statusCode = http.StatusBadRequest
		errorCodeText = "Malformed request"
	case ErrCodeRequestTooLarge:
		statusCode = http.StatusRequestEntityTooLarge
		errorCodeText = "Request too large"
	case ErrCodeRateLimitExceeded:
		statusCode = http.StatusTooManyRequests
		errorCodeText = "Rate limit exceeded"
	case ErrCodeNotFound:
		statusCode = http.StatusNotFound
		errorCodeText = "Not found"
	default:
		statusCode = http.StatusInternalServerError
		errorCodeText = "Internal Error"
	}

	return newErrorResponse(r, requestID, statusCode, errorCodeText, DetailedError{
		ErrorCode:        err.Code(),
		ErrorCodeText:    errorCodeText,
		ErrorCodeMessage: err.Error(),
	})
}

// errorResponseFromAppStore maps appstore.VerificationError to API error
// responses.
//
// Cryptographic failures (the payload cannot be trusted) map to 401.
// Identity and environment mismatches on a correctly signed payload map to
// 422 - the payload is authentic but not for this receiver.
func errorResponseFromAppStore(err *appstore.VerificationError, r *http.Request, requestID string) *ErrorResponse {
	var statusCode int
	var errorCode ErrorCode
	var errorCodeText string

	switch err.Code() {
	case appstore.ErrCodeMissingChain, appstore.ErrCodeMalformedChain:
		statusCode = http.StatusUnauthorized
		errorCode = ErrCodeBadEnvelope
		errorCodeText = "Bad envelope"
	case appstore.ErrCodeUnsupportedAlgorithm:
		statusCode = http.StatusUnauthorized
		errorCode = ErrCodeUnsupportedAlgorithm
		errorCodeText = "Unsupported algorithm"
	case appstore.ErrCodeChainInvalid:
		statusCode = http.StatusUnauthorized
		errorCode = ErrCodeUntrustedChain
		errorCodeText = "Untrusted certificate chain"
	case appstore.ErrCodeVerificationFailure:
		statusCode = http.StatusUnauthorized
		errorCode = ErrCodeBadSignature
		errorCodeText = "Bad signature"
	case appstore.ErrCodeMalformedPayload:
		statusCode = http.StatusUnauthorized
		errorCode = ErrCodeBadPayload
		errorCodeText = "Bad payload"
	case appstore.ErrCodeIdentityMismatch:
		statusCode = http.StatusUnprocessableEntity
		errorCode = ErrCodeIdentityMismatch
		errorCodeText = "Identity mismatch"
	case appstore.ErrCodeEnvironmentMismatch:
		statusCode = http.StatusUnprocessableEntity
		errorCode = ErrCodeEnvironmentMismatch
		errorCodeText = "Environment mismatch"
	default:
		statusCode = http.StatusInternalServerError
		errorCode = ErrCodeInternalError
		errorCodeText = "Internal Error"
	}

	return newErrorResponse(r, requestID, statusCode, errorCodeText, DetailedError{
		ErrorCode:        errorCode,
		ErrorCodeText:    errorCodeText,
		ErrorCodeMessage: err.Error(),
	})
}

func newErrorResponse(r *http.Request, requestID string, statusCode int, message string, details ...DetailedError) *ErrorResponse {
	return &ErrorResponse{
		HTTPMethod:                   r.Method,
		RequestURI:                   r.RequestURI,
		StatusCode:                   statusCode,
		StatusCodeText:               http.StatusText(statusCode),
		StatusCodeMessage:            message,
		ProviderCorrelationReference: requestID,
		ErrorDateTime:                time.Now().UTC().Format(time.RFC3339),
		Errors:                       details,
	}
}
