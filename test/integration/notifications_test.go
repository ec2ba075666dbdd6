//go:build integration

package integration

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/storesignal-io/storesignal/internal/appstore"
	"github.com/storesignal-io/storesignal/internal/appstore/testutil"
)

// TestReceiveNotification exercises the happy path: a notification signed by
// the trusted authority is verified, its nested payloads are verified, and
// the notification is stored keyed by notificationUUID.
func TestReceiveNotification(t *testing.T) {
	env := startInProcessServer(t, "Sandbox")
	defer env.shutdown()

	claims := newNotificationClaims(t, env.authority, appstore.EnvironmentSandbox)
	signedPayload, err := env.authority.Sign(claims)
	if err != nil {
		t.Fatalf("failed to sign notification: %v", err)
	}

	resp := postNotification(t, env.baseURL, signedPayload)
	defer resp.Body.Close()
	requireStatus(t, resp, http.StatusNoContent)

	// the notification should be retrievable by its UUID
	stored, err := env.queries.GetNotificationByUUID(context.Background(), uuid.MustParse(claims.NotificationUUID))
	if err != nil {
		t.Fatalf("stored notification not found: %v", err)
	}

	if stored.NotificationType != string(appstore.NotificationTypeDidRenew) {
		t.Errorf("stored notification type = %q, want %q", stored.NotificationType, appstore.NotificationTypeDidRenew)
	}
	if stored.BundleID != testBundleID {
		t.Errorf("stored bundle id = %q, want %q", stored.BundleID, testBundleID)
	}
	if stored.Environment != string(appstore.EnvironmentSandbox) {
		t.Errorf("stored environment = %q, want %q", stored.Environment, appstore.EnvironmentSandbox)
	}
	if !stored.TransactionID.Valid || stored.TransactionID.String != "2000000123456789" {
		t.Errorf("stored transaction id = %+v, want 2000000123456789", stored.TransactionID)
	}
	if stored.PayloadChecksum == "" {
		t.Error("stored payload checksum is empty")
	}
}

// TestDuplicateDeliveryIsAcknowledged verifies that a redelivered
// notification (same notificationUUID) is acknowledged with 204 but the
// original stored row is not replaced.
func TestDuplicateDeliveryIsAcknowledged(t *testing.T) {
	env := startInProcessServer(t, "Sandbox")
	defer env.shutdown()

	claims := newNotificationClaims(t, env.authority, appstore.EnvironmentSandbox)
	signedPayload, err := env.authority.Sign(claims)
	if err != nil {
		t.Fatalf("failed to sign notification: %v", err)
	}

	first := postNotification(t, env.baseURL, signedPayload)
	first.Body.Close()
	requireStatus(t, first, http.StatusNoContent)

	original, err := env.queries.GetNotificationByUUID(context.Background(), uuid.MustParse(claims.NotificationUUID))
	if err != nil {
		t.Fatalf("stored notification not found: %v", err)
	}

	// redeliver the same payload
	second := postNotification(t, env.baseURL, signedPayload)
	second.Body.Close()
	requireStatus(t, second, http.StatusNoContent)

	after, err := env.queries.GetNotificationByUUID(context.Background(), uuid.MustParse(claims.NotificationUUID))
	if err != nil {
		t.Fatalf("stored notification not found after redelivery: %v", err)
	}

	if after.ID != original.ID {
		t.Errorf("redelivery replaced the stored row: id %s != %s", after.ID, original.ID)
	}
	if !after.ReceivedAt.Time.Equal(original.ReceivedAt.Time) {
		t.Errorf("redelivery changed received_at: %v != %v", after.ReceivedAt.Time, original.ReceivedAt.Time)
	}
}

// TestRejectedNotifications verifies the error mapping for payloads that
// fail verification: cryptographic failures are 401, claim mismatches 422,
// malformed requests 400. Nothing is stored in any of these cases.
func TestRejectedNotifications(t *testing.T) {
	env := startInProcessServer(t, "Sandbox")
	defer env.shutdown()

	// a second authority the server does not trust
	untrusted, err := testutil.NewSigningAuthority()
	if err != nil {
		t.Fatalf("failed to create untrusted authority: %v", err)
	}

	testCases := []struct {
		name       string
		payload    func(t *testing.T) string
		wantStatus int
	}{
		{
			name: "untrusted signing authority",
			payload: func(t *testing.T) string {
				claims := newNotificationClaims(t, env.authority, appstore.EnvironmentSandbox)
				signed, err := untrusted.Sign(claims)
				if err != nil {
					t.Fatalf("failed to sign: %v", err)
				}
				return signed
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "tampered payload",
			payload: func(t *testing.T) string {
				claims := newNotificationClaims(t, env.authority, appstore.EnvironmentSandbox)
				signed, err := env.authority.Sign(claims)
				if err != nil {
					t.Fatalf("failed to sign: %v", err)
				}
				claims.NotificationUUID = uuid.NewString()
				tampered, err := testutil.TamperPayload(signed, claims)
				if err != nil {
					t.Fatalf("failed to tamper payload: %v", err)
				}
				return tampered
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "not a JWS",
			payload: func(t *testing.T) string {
				return "definitely-not-a-jws"
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong bundle id",
			payload: func(t *testing.T) string {
				claims := newNotificationClaims(t, env.authority, appstore.EnvironmentSandbox)
				claims.Data.BundleID = ptr("com.other.app")
				signed, err := env.authority.Sign(claims)
				if err != nil {
					t.Fatalf("failed to sign: %v", err)
				}
				return signed
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "wrong environment",
			payload: func(t *testing.T) string {
				claims := newNotificationClaims(t, env.authority, appstore.EnvironmentSandbox)
				claims.Data.AppEnvironment = ptr(appstore.EnvironmentProduction)
				signed, err := env.authority.Sign(claims)
				if err != nil {
					t.Fatalf("failed to sign: %v", err)
				}
				return signed
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "nested transaction signed by untrusted authority",
			payload: func(t *testing.T) string {
				claims := newNotificationClaims(t, env.authority, appstore.EnvironmentSandbox)
				badTransaction, err := untrusted.Sign(appstore.TransactionPayload{
					TransactionID:  "999",
					BundleID:       ptr(testBundleID),
					AppEnvironment: ptr(appstore.EnvironmentSandbox),
				})
				if err != nil {
					t.Fatalf("failed to sign nested transaction: %v", err)
				}
				claims.Data.SignedTransactionInfo = badTransaction
				signed, err := env.authority.Sign(claims)
				if err != nil {
					t.Fatalf("failed to sign: %v", err)
				}
				return signed
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postNotification(t, env.baseURL, tc.payload(t))
			defer resp.Body.Close()

			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("got status %d, want %d", resp.StatusCode, tc.wantStatus)
			}

			errorResponse := decodeErrorResponse(t, resp)
			if errorResponse["statusCode"] != float64(tc.wantStatus) {
				t.Errorf("error body statusCode = %v, want %d", errorResponse["statusCode"], tc.wantStatus)
			}
			if errorResponse["providerCorrelationReference"] == "" {
				t.Error("error body has no correlation reference")
			}
		})
	}
}

// TestMalformedRequestBody verifies invalid request JSON gets a 400 with the
// standard error body.
func TestMalformedRequestBody(t *testing.T) {
	env := startInProcessServer(t, "Sandbox")
	defer env.shutdown()

	testCases := []struct {
		name string
		body string
	}{
		{"invalid json", `{"signedPayload": `},
		{"missing signedPayload", `{}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(env.baseURL+"/v2/notifications", "application/json",
				strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("failed to POST: %v", err)
			}
			defer resp.Body.Close()

			requireStatus(t, resp, http.StatusBadRequest)
		})
	}
}
