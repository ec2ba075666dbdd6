//go:build integration

// functions that are useful in integration tests

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/storesignal-io/storesignal/internal/appstore"
	"github.com/storesignal-io/storesignal/internal/appstore/testutil"
)

func ptr[T any](v T) *T { return &v }

// newNotificationClaims builds a decoded notification payload for the test
// app identity. The transaction and renewal blobs are signed by the same
// authority so the nested verification succeeds.
func newNotificationClaims(t *testing.T, authority *testutil.SigningAuthority, environment appstore.Environment) *appstore.NotificationPayload {
	t.Helper()

	transaction := appstore.TransactionPayload{
		TransactionID:         "2000000123456789",
		OriginalTransactionID: "2000000100000001",
		BundleID:              ptr(testBundleID),
		ProductID:             "com.example.testapp.monthly",
		AppEnvironment:        ptr(environment),
	}

	signedTransaction, err := authority.Sign(transaction)
	if err != nil {
		t.Fatalf("failed to sign transaction: %v", err)
	}

	renewal := appstore.RenewalInfoPayload{
		OriginalTransactionID: "2000000100000001",
		ProductID:             "com.example.testapp.monthly",
		AppEnvironment:        ptr(environment),
	}

	signedRenewal, err := authority.Sign(renewal)
	if err != nil {
		t.Fatalf("failed to sign renewal info: %v", err)
	}

	data := &appstore.NotificationData{
		AppEnvironment:        ptr(environment),
		BundleID:              ptr(testBundleID),
		SignedTransactionInfo: signedTransaction,
		SignedRenewalInfo:     signedRenewal,
	}
	if environment == appstore.EnvironmentProduction {
		data.AppAppleID = ptr(testAppAppleID)
	}

	return &appstore.NotificationPayload{
		NotificationType: appstore.NotificationTypeDidRenew,
		Subtype:          appstore.SubtypeBillingRecovery,
		NotificationUUID: uuid.NewString(),
		Version:          "2.0",
		SignedDate:       1698148900000,
		Data:             data,
	}
}

// postNotification sends a signed payload to the notification endpoint and
// returns the response. The caller must close the response body.
func postNotification(t *testing.T, baseURL string, signedPayload string) *http.Response {
	t.Helper()

	body, err := json.Marshal(map[string]string{"signedPayload": signedPayload})
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}

	resp, err := http.Post(baseURL+"/v2/notifications", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("failed to POST notification: %v", err)
	}
	return resp
}

// getJSON fetches url and decodes the JSON response into out.
// Returns the HTTP status code.
func getJSON(t *testing.T, url string, out any) int {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("failed to GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response from %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

// decodeErrorResponse decodes the error body of a failed request
func decodeErrorResponse(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	var errorResponse map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&errorResponse); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return errorResponse
}

// requireStatus fails the test if the response status does not match
func requireStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()

	if resp.StatusCode != want {
		t.Fatalf("got status %d, want %d", resp.StatusCode, want)
	}
}
