package appstore

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/storesignal-io/storesignal/internal/appstore/testutil"
)

const (
	testBundleID   = "com.example.app"
	testAppAppleID = int64(42)
)

func newAuthority(t *testing.T) *testutil.SigningAuthority {
	t.Helper()
	authority, err := testutil.NewSigningAuthority()
	if err != nil {
		t.Fatalf("failed to create signing authority: %v", err)
	}
	return authority
}

func newVerifier(t *testing.T, authority *testutil.SigningAuthority, environment Environment, bundleID string, appAppleID *int64) *SignedDataVerifier {
	t.Helper()
	verifier, err := NewSignedDataVerifier([][]byte{authority.RootDER}, environment, bundleID, appAppleID)
	if err != nil {
		t.Fatalf("failed to create verifier: %v", err)
	}
	return verifier
}

func mustSign(t *testing.T, authority *testutil.SigningAuthority, claims any) string {
	t.Helper()
	signed, err := authority.Sign(claims)
	if err != nil {
		t.Fatalf("failed to sign test payload: %v", err)
	}
	return signed
}

// assertCode fails unless err is a VerificationError with the given code.
func assertCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %q, got nil", code)
	}
	var verr *VerificationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *VerificationError, got %T: %v", err, err)
	}
	if verr.Code() != code {
		t.Errorf("expected code %q, got %q (%v)", code, verr.Code(), err)
	}
}

func ptr[T any](v T) *T { return &v }

func sandboxTransaction(bundleID string) TransactionPayload {
	return TransactionPayload{
		BundleID:       ptr(bundleID),
		AppEnvironment: ptr(EnvironmentSandbox),
		TransactionID:  "2000000123456789",
		ProductID:      "com.example.app.premium",
	}
}

func TestNewSignedDataVerifier(t *testing.T) {
	authority := newAuthority(t)

	testCases := []struct {
		name          string
		roots         [][]byte
		environment   Environment
		bundleID      string
		appAppleID    *int64
		wantError     bool
		expectedError string
	}{
		{
			name:        "valid sandbox configuration",
			roots:       [][]byte{authority.RootDER},
			environment: EnvironmentSandbox,
			bundleID:    testBundleID,
		},
		{
			name:        "valid production configuration",
			roots:       [][]byte{authority.RootDER},
			environment: EnvironmentProduction,
			bundleID:    testBundleID,
			appAppleID:  ptr(testAppAppleID),
		},
		{
			name:          "no roots",
			roots:         nil,
			environment:   EnvironmentSandbox,
			bundleID:      testBundleID,
			wantError:     true,
			expectedError: "at least one root certificate",
		},
		{
			name:          "malformed root DER",
			roots:         [][]byte{[]byte("not a certificate")},
			environment:   EnvironmentSandbox,
			bundleID:      testBundleID,
			wantError:     true,
			expectedError: "invalid root certificate",
		},
		{
			name:          "missing bundle id",
			roots:         [][]byte{authority.RootDER},
			environment:   EnvironmentSandbox,
			bundleID:      "",
			wantError:     true,
			expectedError: "bundle id is required",
		},
		{
			name:          "invalid environment",
			roots:         [][]byte{authority.RootDER},
			environment:   EnvironmentXcode,
			bundleID:      testBundleID,
			wantError:     true,
			expectedError: "must be Sandbox or Production",
		},
		{
			name:          "production without app Apple id",
			roots:         [][]byte{authority.RootDER},
			environment:   EnvironmentProduction,
			bundleID:      testBundleID,
			wantError:     true,
			expectedError: "app Apple id is required",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSignedDataVerifier(tc.roots, tc.environment, tc.bundleID, tc.appAppleID)
			if tc.wantError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tc.expectedError) {
					t.Errorf("expected error containing %q, got %q", tc.expectedError, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestVerifyAndDecodeTransaction(t *testing.T) {
	authority := newAuthority(t)
	verifier := newVerifier(t, authority, EnvironmentSandbox, testBundleID, ptr(testAppAppleID))

	testCases := []struct {
		name         string
		setupPayload func(t *testing.T) string
		expectedCode ErrorCode // empty means success expected
	}{
		{
			name: "valid sandbox transaction",
			setupPayload: func(t *testing.T) string {
				return mustSign(t, authority, sandboxTransaction(testBundleID))
			},
		},
		{
			name: "wrong bundle id",
			setupPayload: func(t *testing.T) string {
				return mustSign(t, authority, sandboxTransaction("com.other.app"))
			},
			expectedCode: ErrCodeIdentityMismatch,
		},
		{
			name: "missing bundle id",
			setupPayload: func(t *testing.T) string {
				tx := sandboxTransaction(testBundleID)
				tx.BundleID = nil
				return mustSign(t, authority, tx)
			},
			expectedCode: ErrCodeIdentityMismatch,
		},
		{
			name: "wrong environment",
			setupPayload: func(t *testing.T) string {
				tx := sandboxTransaction(testBundleID)
				tx.AppEnvironment = ptr(EnvironmentProduction)
				return mustSign(t, authority, tx)
			},
			expectedCode: ErrCodeEnvironmentMismatch,
		},
		{
			name: "missing environment",
			setupPayload: func(t *testing.T) string {
				tx := sandboxTransaction(testBundleID)
				tx.AppEnvironment = nil
				return mustSign(t, authority, tx)
			},
			expectedCode: ErrCodeEnvironmentMismatch,
		},
		{
			name: "untrusted signing authority",
			setupPayload: func(t *testing.T) string {
				other := newAuthority(t)
				return mustSign(t, other, sandboxTransaction(testBundleID))
			},
			expectedCode: ErrCodeChainInvalid,
		},
		{
			name: "tampered payload",
			setupPayload: func(t *testing.T) string {
				signed := mustSign(t, authority, sandboxTransaction(testBundleID))
				tampered, err := testutil.TamperPayload(signed, sandboxTransaction("com.attacker.app"))
				if err != nil {
					t.Fatalf("failed to tamper payload: %v", err)
				}
				return tampered
			},
			expectedCode: ErrCodeVerificationFailure,
		},
		{
			name: "algorithm none",
			setupPayload: func(t *testing.T) string {
				signed, err := authority.SignWithHeader(sandboxTransaction(testBundleID), "none", authority.Chain())
				if err != nil {
					t.Fatalf("failed to sign: %v", err)
				}
				return signed
			},
			expectedCode: ErrCodeUnsupportedAlgorithm,
		},
		{
			name: "algorithm RS256",
			setupPayload: func(t *testing.T) string {
				signed, err := authority.SignWithHeader(sandboxTransaction(testBundleID), "RS256", authority.Chain())
				if err != nil {
					t.Fatalf("failed to sign: %v", err)
				}
				return signed
			},
			expectedCode: ErrCodeUnsupportedAlgorithm,
		},
		{
			name: "no x5c header",
			setupPayload: func(t *testing.T) string {
				signed, err := authority.SignWithHeader(sandboxTransaction(testBundleID), "ES256", nil)
				if err != nil {
					t.Fatalf("failed to sign: %v", err)
				}
				return signed
			},
			expectedCode: ErrCodeMissingChain,
		},
		{
			name: "empty x5c list",
			setupPayload: func(t *testing.T) string {
				signed, err := authority.SignWithHeader(sandboxTransaction(testBundleID), "ES256", []string{})
				if err != nil {
					t.Fatalf("failed to sign: %v", err)
				}
				return signed
			},
			expectedCode: ErrCodeMissingChain,
		},
		{
			name: "x5c entry is not base64",
			setupPayload: func(t *testing.T) string {
				signed, err := authority.SignWithHeader(sandboxTransaction(testBundleID), "ES256", []string{"!not-base64!"})
				if err != nil {
					t.Fatalf("failed to sign: %v", err)
				}
				return signed
			},
			expectedCode: ErrCodeMalformedChain,
		},
		{
			name: "x5c entry is not DER",
			setupPayload: func(t *testing.T) string {
				chain := authority.Chain()
				chain[0] = "bm90IGEgY2VydGlmaWNhdGU=" // valid base64, invalid DER
				signed, err := authority.SignWithHeader(sandboxTransaction(testBundleID), "ES256", chain)
				if err != nil {
					t.Fatalf("failed to sign: %v", err)
				}
				return signed
			},
			expectedCode: ErrCodeChainInvalid,
		},
		{
			name: "not a JWS",
			setupPayload: func(t *testing.T) string {
				return "header.payload"
			},
			expectedCode: ErrCodeMalformedChain,
		},
		{
			name: "payload is not a claims object",
			setupPayload: func(t *testing.T) string {
				signed, err := authority.SignRawPayload([]byte("not json"))
				if err != nil {
					t.Fatalf("failed to sign: %v", err)
				}
				return signed
			},
			expectedCode: ErrCodeMalformedPayload,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			payload := tc.setupPayload(t)
			transaction, err := verifier.VerifyAndDecodeTransaction(payload)

			if tc.expectedCode != "" {
				assertCode(t, err, tc.expectedCode)
				if transaction != nil {
					t.Error("claims must not be returned alongside an error")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if transaction.BundleID == nil || *transaction.BundleID != testBundleID {
				t.Errorf("expected bundle id %q, got %v", testBundleID, transaction.BundleID)
			}
			if transaction.TransactionID != "2000000123456789" {
				t.Errorf("unexpected transaction id %q", transaction.TransactionID)
			}
		})
	}
}

func TestVerifyAndDecodeNotification(t *testing.T) {
	authority := newAuthority(t)

	sandboxData := func(bundleID string, appAppleID *int64) *NotificationData {
		return &NotificationData{
			AppEnvironment: ptr(EnvironmentSandbox),
			BundleID:       ptr(bundleID),
			AppAppleID:     appAppleID,
		}
	}

	testCases := []struct {
		name         string
		environment  Environment
		appAppleID   *int64
		notification NotificationPayload
		expectedCode ErrorCode
	}{
		{
			name:        "valid sandbox notification with data",
			environment: EnvironmentSandbox,
			appAppleID:  ptr(testAppAppleID),
			notification: NotificationPayload{
				NotificationType: NotificationTypeDidRenew,
				Data:             sandboxData(testBundleID, ptr(testAppAppleID)),
			},
		},
		{
			name:        "valid sandbox notification with summary",
			environment: EnvironmentSandbox,
			appAppleID:  ptr(testAppAppleID),
			notification: NotificationPayload{
				NotificationType: NotificationTypeRenewalExtension,
				Subtype:          SubtypeSummary,
				Summary: &NotificationSummary{
					AppEnvironment: ptr(EnvironmentSandbox),
					BundleID:       ptr(testBundleID),
					AppAppleID:     ptr(testAppAppleID),
				},
			},
		},
		{
			name:        "neither data nor summary",
			environment: EnvironmentSandbox,
			appAppleID:  ptr(testAppAppleID),
			notification: NotificationPayload{
				NotificationType: NotificationTypeTest,
			},
			expectedCode: ErrCodeIdentityMismatch,
		},
		{
			name:        "wrong bundle id",
			environment: EnvironmentSandbox,
			appAppleID:  ptr(testAppAppleID),
			notification: NotificationPayload{
				NotificationType: NotificationTypeDidRenew,
				Data:             sandboxData("com.other.app", ptr(testAppAppleID)),
			},
			expectedCode: ErrCodeIdentityMismatch,
		},
		{
			name:        "production enforces app Apple id",
			environment: EnvironmentProduction,
			appAppleID:  ptr(testAppAppleID),
			notification: NotificationPayload{
				NotificationType: NotificationTypeDidRenew,
				Data: &NotificationData{
					AppEnvironment: ptr(EnvironmentProduction),
					BundleID:       ptr(testBundleID),
					AppAppleID:     ptr(int64(99)),
				},
			},
			expectedCode: ErrCodeIdentityMismatch,
		},
		{
			name:        "production rejects absent app Apple id",
			environment: EnvironmentProduction,
			appAppleID:  ptr(testAppAppleID),
			notification: NotificationPayload{
				NotificationType: NotificationTypeDidRenew,
				Data: &NotificationData{
					AppEnvironment: ptr(EnvironmentProduction),
					BundleID:       ptr(testBundleID),
				},
			},
			expectedCode: ErrCodeIdentityMismatch,
		},
		{
			name:        "sandbox skips app Apple id check",
			environment: EnvironmentSandbox,
			appAppleID:  ptr(testAppAppleID),
			notification: NotificationPayload{
				NotificationType: NotificationTypeDidRenew,
				Data:             sandboxData(testBundleID, ptr(int64(99))),
			},
		},
		{
			name:        "environment mismatch in data",
			environment: EnvironmentSandbox,
			appAppleID:  ptr(testAppAppleID),
			notification: NotificationPayload{
				NotificationType: NotificationTypeDidRenew,
				Data: &NotificationData{
					AppEnvironment: ptr(EnvironmentProduction),
					BundleID:       ptr(testBundleID),
					AppAppleID:     ptr(testAppAppleID),
				},
			},
			expectedCode: ErrCodeEnvironmentMismatch,
		},
		{
			name:        "data takes precedence over summary",
			environment: EnvironmentSandbox,
			appAppleID:  ptr(testAppAppleID),
			notification: NotificationPayload{
				NotificationType: NotificationTypeDidRenew,
				Data:             sandboxData(testBundleID, ptr(testAppAppleID)),
				Summary: &NotificationSummary{
					AppEnvironment: ptr(EnvironmentProduction),
					BundleID:       ptr("com.other.app"),
				},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			verifier := newVerifier(t, authority, tc.environment, testBundleID, tc.appAppleID)
			signed := mustSign(t, authority, tc.notification)

			notification, err := verifier.VerifyAndDecodeNotification(signed)

			if tc.expectedCode != "" {
				assertCode(t, err, tc.expectedCode)
				if notification != nil {
					t.Error("claims must not be returned alongside an error")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if notification.NotificationType != tc.notification.NotificationType {
				t.Errorf("expected notification type %q, got %q", tc.notification.NotificationType, notification.NotificationType)
			}
		})
	}
}

func TestVerifyAndDecodeRenewalInfo(t *testing.T) {
	authority := newAuthority(t)
	verifier := newVerifier(t, authority, EnvironmentSandbox, testBundleID, ptr(testAppAppleID))

	t.Run("valid renewal info", func(t *testing.T) {
		signed := mustSign(t, authority, RenewalInfoPayload{
			AppEnvironment:        ptr(EnvironmentSandbox),
			OriginalTransactionID: "2000000123456789",
			AutoRenewProductID:    "com.example.app.premium",
		})

		renewalInfo, err := verifier.VerifyAndDecodeRenewalInfo(signed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if renewalInfo.OriginalTransactionID != "2000000123456789" {
			t.Errorf("unexpected original transaction id %q", renewalInfo.OriginalTransactionID)
		}
	})

	t.Run("environment mismatch", func(t *testing.T) {
		signed := mustSign(t, authority, RenewalInfoPayload{
			AppEnvironment: ptr(EnvironmentProduction),
		})

		_, err := verifier.VerifyAndDecodeRenewalInfo(signed)
		assertCode(t, err, ErrCodeEnvironmentMismatch)
	})

	t.Run("missing environment", func(t *testing.T) {
		signed := mustSign(t, authority, RenewalInfoPayload{})

		_, err := verifier.VerifyAndDecodeRenewalInfo(signed)
		assertCode(t, err, ErrCodeEnvironmentMismatch)
	})
}

// Verification is stateless: the same envelope through the same verifier
// must yield the same result every time.
func TestVerifyIsIdempotent(t *testing.T) {
	authority := newAuthority(t)
	verifier := newVerifier(t, authority, EnvironmentSandbox, testBundleID, ptr(testAppAppleID))
	signed := mustSign(t, authority, sandboxTransaction(testBundleID))

	first, err := verifier.VerifyAndDecodeTransaction(signed)
	if err != nil {
		t.Fatalf("first verification failed: %v", err)
	}
	second, err := verifier.VerifyAndDecodeTransaction(signed)
	if err != nil {
		t.Fatalf("second verification failed: %v", err)
	}

	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)
	if string(firstJSON) != string(secondJSON) {
		t.Errorf("verification is not idempotent:\nfirst:  %s\nsecond: %s", firstJSON, secondJSON)
	}

	badSigned := mustSign(t, authority, sandboxTransaction("com.other.app"))
	for i := 0; i < 2; i++ {
		_, err := verifier.VerifyAndDecodeTransaction(badSigned)
		assertCode(t, err, ErrCodeIdentityMismatch)
	}
}

// A notification's nested signed transaction verifies through the same
// verifier.
func TestNestedSignedTransactionInfo(t *testing.T) {
	authority := newAuthority(t)
	verifier := newVerifier(t, authority, EnvironmentSandbox, testBundleID, ptr(testAppAppleID))

	signedTransaction := mustSign(t, authority, sandboxTransaction(testBundleID))
	signedNotification := mustSign(t, authority, NotificationPayload{
		NotificationType: NotificationTypeDidRenew,
		Data: &NotificationData{
			AppEnvironment:        ptr(EnvironmentSandbox),
			BundleID:              ptr(testBundleID),
			SignedTransactionInfo: signedTransaction,
		},
	})

	notification, err := verifier.VerifyAndDecodeNotification(signedNotification)
	if err != nil {
		t.Fatalf("failed to verify notification: %v", err)
	}

	transaction, err := verifier.VerifyAndDecodeTransaction(notification.Data.SignedTransactionInfo)
	if err != nil {
		t.Fatalf("failed to verify nested transaction: %v", err)
	}
	if *transaction.BundleID != *notification.Data.BundleID {
		t.Errorf("bundle id mismatch between notification and nested transaction")
	}
}
