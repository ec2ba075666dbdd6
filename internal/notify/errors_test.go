package notify

import (
	"errors"
	"strings"
	"testing"
)

// sanity check that the error codes are in the correct range

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		errCode  ErrorCode
		wantCode int
	}{
		{"malformed_request", ErrCodeMalformedRequest, 7001},
		{"request_too_large", ErrCodeRequestTooLarge, 7002},
		{"rate_limit_exceeded", ErrCodeRateLimitExceeded, 7003},
		{"internal_error", ErrCodeInternalError, 7004},
		{"not_found", ErrCodeNotFound, 7005},
		{"bad_envelope", ErrCodeBadEnvelope, 7101},
		{"unsupported_algorithm", ErrCodeUnsupportedAlgorithm, 7102},
		{"untrusted_chain", ErrCodeUntrustedChain, 7103},
		{"bad_signature", ErrCodeBadSignature, 7104},
		{"bad_payload", ErrCodeBadPayload, 7105},
		{"identity_mismatch", ErrCodeIdentityMismatch, 8001},
		{"environment_mismatch", ErrCodeEnvironmentMismatch, 8002},
	}
	for _, tt := range tests {
		if int(tt.errCode) != tt.wantCode {
			t.Errorf("%s: got %d, want %d", tt.name, tt.errCode, tt.wantCode)
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapInternalError(cause, "failed to store notification")

	var notifyErr *NotifyError
	if !errors.As(err, &notifyErr) {
		t.Fatalf("expected *NotifyError, got %T", err)
	}
	if notifyErr.Code() != ErrCodeInternalError {
		t.Errorf("code = %d, want %d", notifyErr.Code(), ErrCodeInternalError)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("error text %q does not include the cause", err.Error())
	}
}
