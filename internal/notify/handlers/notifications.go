package handlers

// notifications.go implements the POST /v2/notifications endpoint that receives
// App Store server notifications.

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/storesignal-io/storesignal/internal/appstore"
	"github.com/storesignal-io/storesignal/internal/crypto"
	"github.com/storesignal-io/storesignal/internal/database"
	"github.com/storesignal-io/storesignal/internal/logger"
	"github.com/storesignal-io/storesignal/internal/notify"
)

// ReceiveNotificationHandler handles POST /v2/notifications requests
type ReceiveNotificationHandler struct {
	queries *database.Queries

	// verifier checks the trust chain and claims of every signed payload,
	// including the nested transaction and renewal info blobs.
	verifier *appstore.SignedDataVerifier
}

// NewReceiveNotificationHandler creates a new handler for receiving App Store server notifications
func NewReceiveNotificationHandler(queries *database.Queries, verifier *appstore.SignedDataVerifier) *ReceiveNotificationHandler {
	return &ReceiveNotificationHandler{
		queries:  queries,
		verifier: verifier,
	}
}

// HandleReceiveNotification godoc
//
//	@Summary		Receive an App Store server notification
//	@Description	Receives a V2 App Store server notification. The signed payload is
//	@Description	verified against the pinned App Store root certificates before any of
//	@Description	its claims are used: the x5c certificate chain must validate, the JWS
//	@Description	signature must verify (ES256 only), and the bundle id, app id and
//	@Description	environment claims must match this server's configuration.
//	@Description
//	@Description	When the notification data carries signed transaction or renewal info,
//	@Description	those nested JWS blobs are verified through the same pipeline.
//	@Description
//	@Description	Verified notifications are stored keyed by `notificationUUID`. The App
//	@Description	Store reuses the UUID when retrying a delivery, so a duplicate delivery
//	@Description	is acknowledged with 204 but not stored again.
//	@Description
//	@Description	**Error Responses**
//	@Description
//	@Description	`400 Bad Request` - malformed request body (invalid JSON or missing signedPayload)
//	@Description
//	@Description	`401 Unauthorized` - the signed payload failed cryptographic verification
//	@Description	(missing or untrusted certificate chain, unsupported algorithm, bad signature,
//	@Description	or undecodable payload)
//	@Description
//	@Description	`422 Unprocessable Entity` - the payload verified cryptographically but its
//	@Description	claims do not match this server (wrong bundle id, app id or environment)
//	@Description
//	@Description	`500 Internal Server Error` - temporary technical issues; the App Store
//	@Description	will retry the delivery.
//
//	@Tags			Notifications
//	@Accept			json
//
//	@Param			request	body	notify.NotificationRequest	true	"App Store notification (ResponseBodyV2)"
//
//	@Success		204	"Notification verified and stored (or duplicate acknowledged)"
//	@Failure		400	{object}	notify.ErrorResponse	"Malformed request"
//	@Failure		401	{object}	notify.ErrorResponse	"Verification failed"
//	@Failure		422	{object}	notify.ErrorResponse	"Claims do not match this server"
//	@Failure		500	{object}	notify.ErrorResponse	"Internal error processing request"
//
//	@Router			/v2/notifications [post]
func (h *ReceiveNotificationHandler) HandleReceiveNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqLogger := logger.ContextRequestLogger(ctx)

	// Step 1. Check json structure (failures return 400)
	var request notify.NotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		notify.RespondWithErrorResponse(w, r, notify.WrapMalformedRequestError(err, "failed to decode request JSON"))
		return
	}
	defer r.Body.Close()

	if request.SignedPayload == "" {
		notify.RespondWithErrorResponse(w, r, notify.NewMalformedRequestError("signedPayload is required"))
		return
	}

	// Step 2. Verify the trust chain, signature and claims of the outer payload
	// (failures return 401/422 depending on the error kind)
	payload, err := h.verifier.VerifyAndDecodeNotification(request.SignedPayload)
	if err != nil {
		notify.RespondWithErrorResponse(w, r, err)
		return
	}

	// Step 3. Verify the nested signed payloads, where present.
	// The nested blobs are independently signed and must pass the same
	// verification pipeline before their claims are used.
	var transaction *appstore.TransactionPayload
	if payload.Data != nil {
		if payload.Data.SignedTransactionInfo != "" {
			transaction, err = h.verifier.VerifyAndDecodeTransaction(payload.Data.SignedTransactionInfo)
			if err != nil {
				notify.RespondWithErrorResponse(w, r, err)
				return
			}
		}

		if payload.Data.SignedRenewalInfo != "" {
			if _, err := h.verifier.VerifyAndDecodeRenewalInfo(payload.Data.SignedRenewalInfo); err != nil {
				notify.RespondWithErrorResponse(w, r, err)
				return
			}
		}
	}

	notificationUUID, err := uuid.Parse(payload.NotificationUUID)
	if err != nil {
		notify.RespondWithErrorResponse(w, r, notify.WrapMalformedRequestError(err, "notification payload has no usable notificationUUID"))
		return
	}

	// Step 4. Compute the canonical checksum of the decoded payload.
	// The checksum is stored alongside the payload so consumers can detect
	// post-storage tampering.
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		notify.RespondWithErrorResponse(w, r, notify.WrapInternalError(err, "failed to marshal notification payload"))
		return
	}

	checksum, err := crypto.PayloadChecksum(payloadJSON)
	if err != nil {
		notify.RespondWithErrorResponse(w, r, notify.WrapInternalError(err, "failed to compute payload checksum"))
		return
	}

	// Step 5. Store the notification keyed by notificationUUID.
	// ON CONFLICT DO NOTHING means a duplicate delivery affects zero rows.
	params := buildInsertParams(notificationUUID, payload, transaction, payloadJSON, checksum)

	rowsAffected, err := h.queries.InsertNotification(ctx, params)
	if err != nil {
		notify.RespondWithErrorResponse(w, r, notify.WrapInternalError(err, "failed to store notification"))
		return
	}

	if rowsAffected == 0 {
		// Retry of a previously stored delivery - acknowledge without re-storing
		reqLogger.Info("Duplicate notification delivery acknowledged",
			slog.String("notification_uuid", payload.NotificationUUID),
			slog.String("notification_type", string(payload.NotificationType)),
		)
		notify.RespondWithStatusCodeOnly(w, http.StatusNoContent)
		return
	}

	reqLogger.Info("Notification verified and stored",
		slog.String("notification_uuid", payload.NotificationUUID),
		slog.String("notification_type", string(payload.NotificationType)),
		slog.String("subtype", string(payload.Subtype)),
		slog.String("bundle_id", params.BundleID),
		slog.String("environment", params.Environment),
	)

	notify.RespondWithStatusCodeOnly(w, http.StatusNoContent)
}

// buildInsertParams flattens the verified payload into the stored row.
// Identity fields come from whichever sub-record is present (data takes
// precedence, matching the order the claims were verified in).
func buildInsertParams(
	notificationUUID uuid.UUID,
	payload *appstore.NotificationPayload,
	transaction *appstore.TransactionPayload,
	payloadJSON []byte,
	checksum string,
) database.InsertNotificationParams {
	params := database.InsertNotificationParams{
		NotificationUuid: notificationUUID,
		NotificationType: string(payload.NotificationType),
		Payload:          payloadJSON,
		PayloadChecksum:  checksum,
	}

	if payload.Subtype != "" {
		params.Subtype = pgtype.Text{String: string(payload.Subtype), Valid: true}
	}

	if payload.SignedDate != 0 {
		params.SignedDate = pgtype.Timestamptz{Time: time.UnixMilli(payload.SignedDate).UTC(), Valid: true}
	}

	switch {
	case payload.Data != nil:
		if payload.Data.AppEnvironment != nil {
			params.Environment = string(*payload.Data.AppEnvironment)
		}
		if payload.Data.BundleID != nil {
			params.BundleID = *payload.Data.BundleID
		}
		if payload.Data.AppAppleID != nil {
			params.AppAppleID = pgtype.Int8{Int64: *payload.Data.AppAppleID, Valid: true}
		}
	case payload.Summary != nil:
		if payload.Summary.AppEnvironment != nil {
			params.Environment = string(*payload.Summary.AppEnvironment)
		}
		if payload.Summary.BundleID != nil {
			params.BundleID = *payload.Summary.BundleID
		}
		if payload.Summary.AppAppleID != nil {
			params.AppAppleID = pgtype.Int8{Int64: *payload.Summary.AppAppleID, Valid: true}
		}
	}

	if transaction != nil {
		if transaction.TransactionID != "" {
			params.TransactionID = pgtype.Text{String: transaction.TransactionID, Valid: true}
		}
		if transaction.OriginalTransactionID != "" {
			params.OriginalTransactionID = pgtype.Text{String: transaction.OriginalTransactionID, Valid: true}
		}
	}

	return params
}
