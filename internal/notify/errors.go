package notify

// errors.go defines the error codes used by the receiver API

import "fmt"

// NotifyError represents a structured error from the notify package.
type NotifyError struct {
	// code is the receiver API error code
	code ErrorCode

	// message is a human-readable error message
	message string

	// wrapped is the optional underlying error
	wrapped error
}

func (e *NotifyError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *NotifyError) Code() ErrorCode { return e.code }
func (e *NotifyError) Unwrap() error   { return e.wrapped }

// ErrorCode is used in errors returned by the receiver API.
//
// Codes follow the convention:
//
//   - 7000-7999 for technical errors - the request could not be processed
//     because of a problem with the supplied data or the server.
//   - 8000-8999 for functional errors - the request was technically valid
//     but a business rule prevents processing it.
type ErrorCode int

// Error codes used by the receiver API
const (

	// ErrCodeMalformedRequest is used when the request body cannot be
	// parsed (invalid JSON, missing signedPayload field).
	ErrCodeMalformedRequest ErrorCode = 7001

	// ErrCodeRequestTooLarge is used when the request body exceeds the
	// configured limit - only used in the middleware.
	ErrCodeRequestTooLarge ErrorCode = 7002

	// ErrCodeRateLimitExceeded is used when the rate limit is exceeded
	// - only used in the middleware.
	ErrCodeRateLimitExceeded ErrorCode = 7003

	// ErrCodeInternalError is used when an internal server error occurs.
	ErrCodeInternalError ErrorCode = 7004

	// ErrCodeNotFound is used when a stored notification is not found.
	ErrCodeNotFound ErrorCode = 7005

	// ErrCodeBadEnvelope is used when the signed payload is structurally
	// unusable: the JWS header cannot be parsed, the x5c chain is missing
	// or fails transport decoding.
	ErrCodeBadEnvelope ErrorCode = 7101

	// ErrCodeUnsupportedAlgorithm is used when the signed payload declares
	// a signing algorithm other than ES256.
	ErrCodeUnsupportedAlgorithm ErrorCode = 7102

	// ErrCodeUntrustedChain is used when the embedded certificate chain
	// does not validate to a pinned root.
	ErrCodeUntrustedChain ErrorCode = 7103

	// ErrCodeBadSignature is used when the JWS signature does not verify
	// against the chain-validated leaf key.
	ErrCodeBadSignature ErrorCode = 7104

	// ErrCodeBadPayload is used when a verified payload does not
	// deserialize into the expected claim shape.
	ErrCodeBadPayload ErrorCode = 7105

	// ErrCodeIdentityMismatch is used when a verified payload belongs to a
	// different bundle id or app Apple id than this receiver serves.
	ErrCodeIdentityMismatch ErrorCode = 8001

	// ErrCodeEnvironmentMismatch is used when a verified payload was
	// produced in a different App Store environment than configured.
	ErrCodeEnvironmentMismatch ErrorCode = 8002
)

// NewMalformedRequestError creates an error for an unparseable request body.
func NewMalformedRequestError(msg string) error {
	return &NotifyError{code: ErrCodeMalformedRequest, message: msg}
}

// WrapMalformedRequestError wraps an existing error as a malformed request error.
func WrapMalformedRequestError(err error, msg string) error {
	return &NotifyError{code: ErrCodeMalformedRequest, message: msg, wrapped: err}
}

// NewRequestTooLargeError creates an error for an oversized request body.
func NewRequestTooLargeError(msg string) error {
	return &NotifyError{code: ErrCodeRequestTooLarge, message: msg}
}

// NewRateLimitError creates a rate limit exceeded error.
func NewRateLimitError(msg string) error {
	return &NotifyError{code: ErrCodeRateLimitExceeded, message: msg}
}

// NewNotFoundError creates an error for a missing stored notification.
func NewNotFoundError(msg string) error {
	return &NotifyError{code: ErrCodeNotFound, message: msg}
}

// NewInternalError creates an internal error for unexpected failures.
func NewInternalError(msg string) error {
	return &NotifyError{code: ErrCodeInternalError, message: msg}
}

// WrapInternalError wraps an existing error as an internal error.
func WrapInternalError(err error, msg string) error {
	return &NotifyError{code: ErrCodeInternalError, message: msg, wrapped: err}
}
