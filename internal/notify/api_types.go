package notify

// these are the request and response types for the notification receiver API

import (
	"encoding/json"
	"time"

	"github.com/storesignal-io/storesignal/internal/database"
)

// NotificationRequest is the body the App Store posts to the notification URL
// (ResponseBodyV2). The only field is the signed payload.
type NotificationRequest struct {
	// SignedPayload is the JWS compact serialization of the notification.
	SignedPayload string `json:"signedPayload"`
}

// StoredNotificationResponse is the admin API view of a stored notification.
type StoredNotificationResponse struct {
	// NotificationUUID is the App Store delivery identifier (deduplication key).
	NotificationUUID string `json:"notificationUUID"`

	// NotificationType is the type of event the notification described.
	NotificationType string `json:"notificationType"`

	// Subtype further qualifies the notification type, when present.
	Subtype *string `json:"subtype,omitempty"`

	// Environment is the App Store environment the event occurred in.
	Environment string `json:"environment"`

	// BundleID is the bundle identifier the notification was issued for.
	BundleID string `json:"bundleId"`

	// AppAppleID is the App Store identifier of the app (Production only).
	AppAppleID *int64 `json:"appAppleId,omitempty"`

	// Payload is the decoded notification payload as stored.
	Payload json.RawMessage `json:"payload"`

	// PayloadChecksum is the SHA-256 checksum of the canonicalized payload.
	// Length: exactly 64 hex characters
	PayloadChecksum string `json:"payloadChecksum"`

	// SignedDate is the time the App Store signed the payload (RFC3339).
	SignedDate *string `json:"signedDate,omitempty"`

	// TransactionID identifies the transaction the notification relates to,
	// when the notification carried signed transaction info.
	TransactionID *string `json:"transactionId,omitempty"`

	// OriginalTransactionID is the original purchase transaction identifier,
	// when the notification carried signed transaction info.
	OriginalTransactionID *string `json:"originalTransactionId,omitempty"`

	// ReceivedAt is the time this receiver first stored the notification (RFC3339).
	ReceivedAt string `json:"receivedAt"`
}

// StoredNotificationFromModel converts a database row to the admin API response type.
func StoredNotificationFromModel(n database.Notification) StoredNotificationResponse {
	response := StoredNotificationResponse{
		NotificationUUID: n.NotificationUuid.String(),
		NotificationType: n.NotificationType,
		Environment:      n.Environment,
		BundleID:         n.BundleID,
		Payload:          json.RawMessage(n.Payload),
		PayloadChecksum:  n.PayloadChecksum,
	}

	if n.Subtype.Valid {
		response.Subtype = &n.Subtype.String
	}
	if n.AppAppleID.Valid {
		response.AppAppleID = &n.AppAppleID.Int64
	}
	if n.SignedDate.Valid {
		signedDate := n.SignedDate.Time.UTC().Format(time.RFC3339)
		response.SignedDate = &signedDate
	}
	if n.TransactionID.Valid {
		response.TransactionID = &n.TransactionID.String
	}
	if n.OriginalTransactionID.Valid {
		response.OriginalTransactionID = &n.OriginalTransactionID.String
	}
	if n.ReceivedAt.Valid {
		response.ReceivedAt = n.ReceivedAt.Time.UTC().Format(time.RFC3339)
	}

	return response
}
