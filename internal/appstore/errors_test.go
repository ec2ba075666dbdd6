package appstore

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestVerificationError(t *testing.T) {
	testCases := []struct {
		name         string
		err          error
		expectedCode ErrorCode
		expectedText string
	}{
		{
			name:         "missing chain",
			err:          NewMissingChainError("no x5c"),
			expectedCode: ErrCodeMissingChain,
			expectedText: "no x5c",
		},
		{
			name:         "unsupported algorithm",
			err:          NewUnsupportedAlgorithmError("got RS256"),
			expectedCode: ErrCodeUnsupportedAlgorithm,
			expectedText: "got RS256",
		},
		{
			name:         "wrapped chain failure",
			err:          WrapChainInvalidError(fmt.Errorf("x509: unknown authority"), "chain validation failed"),
			expectedCode: ErrCodeChainInvalid,
			expectedText: "unknown authority",
		},
		{
			name:         "identity mismatch",
			err:          NewIdentityMismatchError("bundle id mismatch"),
			expectedCode: ErrCodeIdentityMismatch,
			expectedText: "bundle id mismatch",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var verr *VerificationError
			if !errors.As(tc.err, &verr) {
				t.Fatalf("expected *VerificationError, got %T", tc.err)
			}
			if verr.Code() != tc.expectedCode {
				t.Errorf("expected code %q, got %q", tc.expectedCode, verr.Code())
			}
			if !strings.Contains(tc.err.Error(), tc.expectedText) {
				t.Errorf("expected message containing %q, got %q", tc.expectedText, tc.err.Error())
			}
			// messages carry the code prefix so log lines are greppable
			if !strings.HasPrefix(tc.err.Error(), string(tc.expectedCode)) {
				t.Errorf("expected message prefixed with code %q, got %q", tc.expectedCode, tc.err.Error())
			}
		})
	}

	t.Run("unwrap preserves the cause", func(t *testing.T) {
		cause := fmt.Errorf("underlying")
		err := WrapVerificationFailureError(cause, "signature check failed")
		if !errors.Is(err, cause) {
			t.Error("expected errors.Is to find the wrapped cause")
		}
	})
}
