package appstore

// errors.go defines the error codes returned by the verification pipeline.
//
// The codes split into two groups that callers are expected to treat
// differently:
//
//   - cryptographic failures (missing_chain, malformed_chain,
//     unsupported_algorithm, chain_invalid, verification_failure) mean the
//     payload cannot be trusted at all and may indicate a forgery attempt
//   - semantic mismatches (identity_mismatch, environment_mismatch) mean a
//     correctly signed payload belongs to a different app or environment,
//     which is usually a configuration problem rather than an attack

import "fmt"

// Error represents a structured error from the appstore package.
type Error interface {
	error
	Code() ErrorCode
	Unwrap() error
}

type ErrorCode string

const (
	// ErrCodeMissingChain: the JWS header declares no x5c certificate chain
	// (or an empty one). Without a chain there is no key to verify against.
	ErrCodeMissingChain ErrorCode = "missing_chain"

	// ErrCodeMalformedChain: the JWS header could not be parsed, or an x5c
	// entry is not valid base64.
	ErrCodeMalformedChain ErrorCode = "malformed_chain"

	// ErrCodeUnsupportedAlgorithm: the header declares a signing algorithm
	// other than ES256 (including "none"). There is no fallback.
	ErrCodeUnsupportedAlgorithm ErrorCode = "unsupported_algorithm"

	// ErrCodeChainInvalid: the certificate chain does not validate to a
	// pinned root, has a broken link, is expired, or fails to parse as DER.
	ErrCodeChainInvalid ErrorCode = "chain_invalid"

	// ErrCodeVerificationFailure: the JWS signature did not verify against
	// the chain-validated leaf key. Deliberately does not distinguish
	// "wrong key" from "tampered payload".
	ErrCodeVerificationFailure ErrorCode = "verification_failure"

	// ErrCodeMalformedPayload: the signature verified but the payload does
	// not deserialize into the expected claim shape.
	ErrCodeMalformedPayload ErrorCode = "malformed_payload"

	// ErrCodeIdentityMismatch: the decoded claims belong to a different
	// bundle id or app Apple id than configured, or a notification carries
	// neither a data nor a summary record.
	ErrCodeIdentityMismatch ErrorCode = "identity_mismatch"

	// ErrCodeEnvironmentMismatch: the decoded claims were produced in a
	// different App Store environment than configured.
	ErrCodeEnvironmentMismatch ErrorCode = "environment_mismatch"

	// ErrCodeInternal: unexpected failures (key construction, marshalling).
	ErrCodeInternal ErrorCode = "internal"
)

// VerificationError represents a structured error from the appstore package.
type VerificationError struct {
	// code identifies the failure mode
	code ErrorCode

	// message is a human-readable error message
	message string

	// wrapped is the optional underlying error
	wrapped error
}

func (e *VerificationError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *VerificationError) Code() ErrorCode { return e.code }
func (e *VerificationError) Unwrap() error   { return e.wrapped }

// NewMissingChainError creates an error for a JWS header with no x5c chain.
func NewMissingChainError(msg string) error {
	return &VerificationError{code: ErrCodeMissingChain, message: msg}
}

// NewMalformedChainError creates an error for an unparseable header or an
// x5c entry that fails transport decoding.
func NewMalformedChainError(msg string) error {
	return &VerificationError{code: ErrCodeMalformedChain, message: msg}
}

// WrapMalformedChainError wraps an existing error as a malformed chain error.
func WrapMalformedChainError(err error, msg string) error {
	return &VerificationError{code: ErrCodeMalformedChain, message: msg, wrapped: err}
}

// NewUnsupportedAlgorithmError creates an error for a header declaring an
// algorithm other than ES256.
func NewUnsupportedAlgorithmError(msg string) error {
	return &VerificationError{code: ErrCodeUnsupportedAlgorithm, message: msg}
}

// WrapChainInvalidError wraps a certificate chain validation failure.
// Use this when the chain does not resolve to a pinned root, a link is
// broken, a certificate is expired, or a chain entry fails to parse as DER.
func WrapChainInvalidError(err error, msg string) error {
	return &VerificationError{code: ErrCodeChainInvalid, message: msg, wrapped: err}
}

// NewVerificationFailureError creates a signature verification error.
func NewVerificationFailureError(msg string) error {
	return &VerificationError{code: ErrCodeVerificationFailure, message: msg}
}

// WrapVerificationFailureError wraps an existing error as a signature
// verification failure.
func WrapVerificationFailureError(err error, msg string) error {
	return &VerificationError{code: ErrCodeVerificationFailure, message: msg, wrapped: err}
}

// WrapMalformedPayloadError wraps a claim deserialization failure.
func WrapMalformedPayloadError(err error, msg string) error {
	return &VerificationError{code: ErrCodeMalformedPayload, message: msg, wrapped: err}
}

// NewIdentityMismatchError creates an error for claims that belong to a
// different app than the verifier is configured for.
func NewIdentityMismatchError(msg string) error {
	return &VerificationError{code: ErrCodeIdentityMismatch, message: msg}
}

// NewEnvironmentMismatchError creates an error for claims produced in a
// different App Store environment than the verifier is configured for.
func NewEnvironmentMismatchError(msg string) error {
	return &VerificationError{code: ErrCodeEnvironmentMismatch, message: msg}
}

// NewInternalError creates an internal error for unexpected failures.
func NewInternalError(msg string) error {
	return &VerificationError{code: ErrCodeInternal, message: msg}
}

// WrapInternalError wraps an existing error as an internal error.
func WrapInternalError(err error, msg string) error {
	return &VerificationError{code: ErrCodeInternal, message: msg, wrapped: err}
}
