package notify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/storesignal-io/storesignal/internal/appstore"
	"github.com/storesignal-io/storesignal/internal/logger"
)

func newTestRequest(t *testing.T) *http.Request {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/v2/notifications", nil)
	ctx := context.WithValue(r.Context(), middleware.RequestIDKey, "test-request-id")
	ctx = logger.ContextWithRequestLogger(ctx, slog.New(slog.DiscardHandler))
	return r.WithContext(ctx)
}

func TestMapErrorToResponse(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantStatus     int
		wantErrorCode  ErrorCode
		wantStatusText string
	}{
		{
			name:           "malformed request",
			err:            NewMalformedRequestError("could not parse request body"),
			wantStatus:     http.StatusBadRequest,
			wantErrorCode:  ErrCodeMalformedRequest,
			wantStatusText: "Bad Request",
		},
		{
			name:           "request too large",
			err:            NewRequestTooLargeError("request body exceeds limit"),
			wantStatus:     http.StatusRequestEntityTooLarge,
			wantErrorCode:  ErrCodeRequestTooLarge,
			wantStatusText: "Request Entity Too Large",
		},
		{
			name:           "rate limit exceeded",
			err:            NewRateLimitError("too many requests"),
			wantStatus:     http.StatusTooManyRequests,
			wantErrorCode:  ErrCodeRateLimitExceeded,
			wantStatusText: "Too Many Requests",
		},
		{
			name:           "not found",
			err:            NewNotFoundError("notification not found"),
			wantStatus:     http.StatusNotFound,
			wantErrorCode:  ErrCodeNotFound,
			wantStatusText: "Not Found",
		},
		{
			name:           "internal error",
			err:            WrapInternalError(errors.New("db down"), "failed to store notification"),
			wantStatus:     http.StatusInternalServerError,
			wantErrorCode:  ErrCodeInternalError,
			wantStatusText: "Internal Server Error",
		},
		{
			name:          "missing chain",
			err:           appstore.NewMissingChainError("no x5c header"),
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: ErrCodeBadEnvelope,
		},
		{
			name:          "malformed chain",
			err:           appstore.NewMalformedChainError("certificate does not parse"),
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: ErrCodeBadEnvelope,
		},
		{
			name:          "unsupported algorithm",
			err:           appstore.NewUnsupportedAlgorithmError("alg RS256 is not supported"),
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: ErrCodeUnsupportedAlgorithm,
		},
		{
			name:          "untrusted chain",
			err:           appstore.WrapChainInvalidError(errors.New("unknown authority"), "chain validation failed"),
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: ErrCodeUntrustedChain,
		},
		{
			name:          "bad signature",
			err:           appstore.NewVerificationFailureError("signature did not verify"),
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: ErrCodeBadSignature,
		},
		{
			name:          "bad payload",
			err:           appstore.WrapMalformedPayloadError(errors.New("unexpected EOF"), "payload does not deserialize"),
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: ErrCodeBadPayload,
		},
		{
			name:          "identity mismatch",
			err:           appstore.NewIdentityMismatchError("bundle id does not match"),
			wantStatus:    http.StatusUnprocessableEntity,
			wantErrorCode: ErrCodeIdentityMismatch,
		},
		{
			name:          "environment mismatch",
			err:           appstore.NewEnvironmentMismatchError("payload is from Sandbox"),
			wantStatus:    http.StatusUnprocessableEntity,
			wantErrorCode: ErrCodeEnvironmentMismatch,
		},
		{
			name:          "appstore internal error",
			err:           appstore.NewInternalError("unexpected failure"),
			wantStatus:    http.StatusInternalServerError,
			wantErrorCode: ErrCodeInternalError,
		},
		{
			name:          "unmapped error type",
			err:           errors.New("something else entirely"),
			wantStatus:    http.StatusInternalServerError,
			wantErrorCode: ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRequest(t)
			resp := MapErrorToResponse(tt.err, r)

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatusText != "" && resp.StatusCodeText != tt.wantStatusText {
				t.Errorf("StatusCodeText = %q, want %q", resp.StatusCodeText, tt.wantStatusText)
			}
			if len(resp.Errors) != 1 {
				t.Fatalf("len(Errors) = %d, want 1", len(resp.Errors))
			}
			if resp.Errors[0].ErrorCode != tt.wantErrorCode {
				t.Errorf("ErrorCode = %d, want %d", resp.Errors[0].ErrorCode, tt.wantErrorCode)
			}
			if resp.HTTPMethod != http.MethodPost {
				t.Errorf("HTTPMethod = %q, want POST", resp.HTTPMethod)
			}
			if resp.ProviderCorrelationReference != "test-request-id" {
				t.Errorf("ProviderCorrelationReference = %q, want test-request-id", resp.ProviderCorrelationReference)
			}
			if resp.ErrorDateTime == "" {
				t.Error("ErrorDateTime is empty")
			}
		})
	}
}
