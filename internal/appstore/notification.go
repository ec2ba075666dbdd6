package appstore

// notification.go models App Store Server Notifications V2 payloads.
//
// A decoded notification carries exactly one of two sub-records: Data (a
// single-event notification, the common case) or Summary (the result of a
// RENEWAL_EXTENSION request covering many subscriptions). Identity checks
// run against whichever sub-record is present; a notification with neither
// is not decodable into a recognized shape and is rejected.

// NotificationType is the type of an App Store server notification.
type NotificationType string

const (
	NotificationTypeConsumptionRequest     NotificationType = "CONSUMPTION_REQUEST"
	NotificationTypeDidChangeRenewalPref   NotificationType = "DID_CHANGE_RENEWAL_PREF"
	NotificationTypeDidChangeRenewalStatus NotificationType = "DID_CHANGE_RENEWAL_STATUS"
	NotificationTypeDidFailToRenew         NotificationType = "DID_FAIL_TO_RENEW"
	NotificationTypeDidRenew               NotificationType = "DID_RENEW"
	NotificationTypeExpired                NotificationType = "EXPIRED"
	NotificationTypeExternalPurchaseToken  NotificationType = "EXTERNAL_PURCHASE_TOKEN"
	NotificationTypeGracePeriodExpired     NotificationType = "GRACE_PERIOD_EXPIRED"
	NotificationTypeOfferRedeemed          NotificationType = "OFFER_REDEEMED"
	NotificationTypePriceIncrease          NotificationType = "PRICE_INCREASE"
	NotificationTypeRefund                 NotificationType = "REFUND"
	NotificationTypeRefundDeclined         NotificationType = "REFUND_DECLINED"
	NotificationTypeRefundReversed         NotificationType = "REFUND_REVERSED"
	NotificationTypeRenewalExtended        NotificationType = "RENEWAL_EXTENDED"
	NotificationTypeRenewalExtension       NotificationType = "RENEWAL_EXTENSION"
	NotificationTypeRevoke                 NotificationType = "REVOKE"
	NotificationTypeSubscribed             NotificationType = "SUBSCRIBED"
	NotificationTypeTest                   NotificationType = "TEST"
)

// Subtype qualifies a notification type (e.g. SUBSCRIBED/INITIAL_BUY vs
// SUBSCRIBED/RESUBSCRIBE).
type Subtype string

const (
	SubtypeAccepted         Subtype = "ACCEPTED"
	SubtypeAutoRenewDisabled Subtype = "AUTO_RENEW_DISABLED"
	SubtypeAutoRenewEnabled  Subtype = "AUTO_RENEW_ENABLED"
	SubtypeBillingRecovery   Subtype = "BILLING_RECOVERY"
	SubtypeBillingRetry      Subtype = "BILLING_RETRY"
	SubtypeDowngrade         Subtype = "DOWNGRADE"
	SubtypeFailure           Subtype = "FAILURE"
	SubtypeGracePeriod       Subtype = "GRACE_PERIOD"
	SubtypeInitialBuy        Subtype = "INITIAL_BUY"
	SubtypePending           Subtype = "PENDING"
	SubtypePriceIncrease     Subtype = "PRICE_INCREASE"
	SubtypeProductNotForSale Subtype = "PRODUCT_NOT_FOR_SALE"
	SubtypeResubscribe       Subtype = "RESUBSCRIBE"
	SubtypeSummary           Subtype = "SUMMARY"
	SubtypeUnreported        Subtype = "UNREPORTED"
	SubtypeUpgrade           Subtype = "UPGRADE"
	SubtypeVoluntary         Subtype = "VOLUNTARY"
)

// NotificationPayload is the decoded payload of an App Store server
// notification (ResponseBodyV2DecodedPayload).
type NotificationPayload struct {
	// NotificationType is the type of event the notification describes.
	NotificationType NotificationType `json:"notificationType,omitempty"`

	// Subtype further qualifies the notification type.
	Subtype Subtype `json:"subtype,omitempty"`

	// NotificationUUID uniquely identifies this notification delivery.
	// The App Store reuses it when retrying a delivery, so it is the
	// deduplication key for receivers.
	NotificationUUID string `json:"notificationUUID,omitempty"`

	// Version is the App Store Server Notification version ("2.0").
	Version string `json:"version,omitempty"`

	// SignedDate is the time the App Store signed this payload (ms since epoch).
	SignedDate int64 `json:"signedDate,omitempty"`

	// Data carries the app metadata and signed transaction/renewal blobs for
	// a single-event notification. Mutually exclusive with Summary.
	Data *NotificationData `json:"data,omitempty"`

	// Summary carries the aggregate result of a renewal-extension request.
	// Mutually exclusive with Data.
	Summary *NotificationSummary `json:"summary,omitempty"`

	// ExternalPurchaseToken is present only for EXTERNAL_PURCHASE_TOKEN
	// notifications.
	ExternalPurchaseToken *ExternalPurchaseToken `json:"externalPurchaseToken,omitempty"`
}

// NotificationData is the app metadata and signed payloads of a
// single-event notification.
type NotificationData struct {
	// AppEnvironment is the App Store environment the event occurred in.
	AppEnvironment *Environment `json:"environment,omitempty"`

	// AppAppleID is the App Store identifier of the app. Only populated for
	// Production events.
	AppAppleID *int64 `json:"appAppleId,omitempty"`

	// BundleID is the bundle identifier of the app.
	BundleID *string `json:"bundleId,omitempty"`

	// BundleVersion is the CFBundleVersion of the app.
	BundleVersion string `json:"bundleVersion,omitempty"`

	// SignedTransactionInfo is a signed transaction (itself a JWS) that must
	// be verified through the same pipeline before its claims are used.
	SignedTransactionInfo string `json:"signedTransactionInfo,omitempty"`

	// SignedRenewalInfo is the signed renewal info JWS, if the event relates
	// to an auto-renewable subscription.
	SignedRenewalInfo string `json:"signedRenewalInfo,omitempty"`

	// Status is the status of an auto-renewable subscription at signing time.
	Status *int32 `json:"status,omitempty"`
}

// NotificationSummary is the aggregate result of a renewal-extension
// request (RENEWAL_EXTENSION / SUMMARY notifications).
type NotificationSummary struct {
	// AppEnvironment is the App Store environment the summary applies to.
	AppEnvironment *Environment `json:"environment,omitempty"`

	// AppAppleID is the App Store identifier of the app.
	AppAppleID *int64 `json:"appAppleId,omitempty"`

	// BundleID is the bundle identifier of the app.
	BundleID *string `json:"bundleId,omitempty"`

	// ProductID is the product identifier of the extended subscription.
	ProductID string `json:"productId,omitempty"`

	// RequestIdentifier is the UUID of the renewal-extension request.
	RequestIdentifier string `json:"requestIdentifier,omitempty"`

	// StorefrontCountryCodes lists the storefronts the extension applied to.
	StorefrontCountryCodes []string `json:"storefrontCountryCodes,omitempty"`

	// FailedCount is the number of subscriptions that failed to extend.
	FailedCount int64 `json:"failedCount,omitempty"`

	// SucceededCount is the number of subscriptions that were extended.
	SucceededCount int64 `json:"succeededCount,omitempty"`
}

// ExternalPurchaseToken is the payload of an EXTERNAL_PURCHASE_TOKEN
// notification. It carries no bundle identity and is not subject to the
// identity checks.
type ExternalPurchaseToken struct {
	// ExternalPurchaseID uniquely identifies the token.
	ExternalPurchaseID string `json:"externalPurchaseId,omitempty"`

	// TokenCreationDate is the token creation time (ms since epoch).
	TokenCreationDate int64 `json:"tokenCreationDate,omitempty"`

	// AppAppleID is the App Store identifier of the app.
	AppAppleID *int64 `json:"appAppleId,omitempty"`

	// BundleID is the bundle identifier of the app.
	BundleID *string `json:"bundleId,omitempty"`
}
