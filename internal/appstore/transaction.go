package appstore

// TransactionPayload is the decoded payload of a signed transaction
// (JWSTransaction). All date fields are milliseconds since the Unix epoch,
// as delivered on the wire.
//
// Only BundleID and AppEnvironment are inspected by the verifier; the rest
// of the fields are passed through to the caller untouched.
type TransactionPayload struct {
	// OriginalTransactionID is the transaction identifier of the original purchase.
	OriginalTransactionID string `json:"originalTransactionId,omitempty"`

	// TransactionID is the unique identifier for this transaction.
	TransactionID string `json:"transactionId,omitempty"`

	// WebOrderLineItemID identifies subscription purchase events across devices, including renewals.
	WebOrderLineItemID string `json:"webOrderLineItemId,omitempty"`

	// BundleID is the bundle identifier of the app the transaction belongs to.
	BundleID *string `json:"bundleId,omitempty"`

	// ProductID is the product identifier of the in-app purchase.
	ProductID string `json:"productId,omitempty"`

	// SubscriptionGroupIdentifier is the identifier of the subscription group the subscription belongs to.
	SubscriptionGroupIdentifier string `json:"subscriptionGroupIdentifier,omitempty"`

	// PurchaseDate is the time the App Store charged the user's account (ms since epoch).
	PurchaseDate int64 `json:"purchaseDate,omitempty"`

	// OriginalPurchaseDate is the purchase date of the original transaction (ms since epoch).
	OriginalPurchaseDate int64 `json:"originalPurchaseDate,omitempty"`

	// ExpiresDate is the expiry time of the subscription (ms since epoch).
	ExpiresDate int64 `json:"expiresDate,omitempty"`

	// Quantity is the number of consumable products purchased.
	Quantity int32 `json:"quantity,omitempty"`

	// Type is the product type of the in-app purchase
	// (e.g. "Auto-Renewable Subscription", "Consumable").
	Type string `json:"type,omitempty"`

	// AppAccountToken is the UUID the app optionally associates with the purchasing account.
	AppAccountToken string `json:"appAccountToken,omitempty"`

	// InAppOwnershipType describes whether the user purchased the product
	// or has access via family sharing ("PURCHASED" or "FAMILY_SHARED").
	InAppOwnershipType string `json:"inAppOwnershipType,omitempty"`

	// SignedDate is the time the App Store signed this payload (ms since epoch).
	SignedDate int64 `json:"signedDate,omitempty"`

	// RevocationReason is the reason a refunded transaction was revoked.
	RevocationReason *int32 `json:"revocationReason,omitempty"`

	// RevocationDate is the time the transaction was revoked (ms since epoch).
	RevocationDate int64 `json:"revocationDate,omitempty"`

	// IsUpgraded indicates the user upgraded to another subscription.
	IsUpgraded bool `json:"isUpgraded,omitempty"`

	// OfferType is the type of subscription offer applied to the transaction.
	OfferType *int32 `json:"offerType,omitempty"`

	// OfferIdentifier is the identifier of the applied subscription offer.
	OfferIdentifier string `json:"offerIdentifier,omitempty"`

	// AppEnvironment is the App Store environment the transaction was produced in.
	AppEnvironment *Environment `json:"environment,omitempty"`

	// Storefront is the three-letter code of the storefront country or region.
	Storefront string `json:"storefront,omitempty"`

	// StorefrontID is the App Store storefront identifier.
	StorefrontID string `json:"storefrontId,omitempty"`

	// TransactionReason is the cause of the transaction ("PURCHASE" or "RENEWAL").
	TransactionReason string `json:"transactionReason,omitempty"`

	// Currency is the ISO 4217 currency code of the price.
	Currency string `json:"currency,omitempty"`

	// Price is the price, in milliunits, of the purchase.
	Price int64 `json:"price,omitempty"`

	// OfferDiscountType is the payment mode of the applied offer
	// ("FREE_TRIAL", "PAY_AS_YOU_GO" or "PAY_UP_FRONT").
	OfferDiscountType string `json:"offerDiscountType,omitempty"`
}
