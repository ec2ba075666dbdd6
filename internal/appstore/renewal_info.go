package appstore

// RenewalInfoPayload is the decoded payload of signed renewal info
// (JWSRenewalInfo). Renewal info carries no bundle identity, so the
// verifier only checks its environment.
type RenewalInfoPayload struct {
	// OriginalTransactionID is the transaction identifier of the original purchase.
	OriginalTransactionID string `json:"originalTransactionId,omitempty"`

	// AutoRenewProductID is the product the subscription will renew to.
	AutoRenewProductID string `json:"autoRenewProductId,omitempty"`

	// ProductID is the current product identifier of the subscription.
	ProductID string `json:"productId,omitempty"`

	// AutoRenewStatus is the renewal status (0 = off, 1 = on).
	AutoRenewStatus *int32 `json:"autoRenewStatus,omitempty"`

	// ExpirationIntent is the reason an expired subscription lapsed.
	ExpirationIntent *int32 `json:"expirationIntent,omitempty"`

	// GracePeriodExpiresDate is the end of the billing grace period (ms since epoch).
	GracePeriodExpiresDate int64 `json:"gracePeriodExpiresDate,omitempty"`

	// IsInBillingRetryPeriod indicates the App Store is retrying billing.
	IsInBillingRetryPeriod bool `json:"isInBillingRetryPeriod,omitempty"`

	// OfferType is the type of subscription offer that applies to the next renewal.
	OfferType *int32 `json:"offerType,omitempty"`

	// OfferIdentifier is the identifier of the offer that applies to the next renewal.
	OfferIdentifier string `json:"offerIdentifier,omitempty"`

	// PriceIncreaseStatus indicates whether the user consented to a price increase.
	PriceIncreaseStatus *int32 `json:"priceIncreaseStatus,omitempty"`

	// SignedDate is the time the App Store signed this payload (ms since epoch).
	SignedDate int64 `json:"signedDate,omitempty"`

	// AppEnvironment is the App Store environment the renewal info was produced in.
	AppEnvironment *Environment `json:"environment,omitempty"`

	// RecentSubscriptionStartDate is the earliest start date of the
	// subscription within the last 60 days of activity (ms since epoch).
	RecentSubscriptionStartDate int64 `json:"recentSubscriptionStartDate,omitempty"`

	// RenewalDate is the next renewal or expiry time (ms since epoch).
	RenewalDate int64 `json:"renewalDate,omitempty"`

	// Currency is the ISO 4217 currency code of the renewal price.
	Currency string `json:"currency,omitempty"`

	// RenewalPrice is the renewal price in milliunits.
	RenewalPrice int64 `json:"renewalPrice,omitempty"`

	// OfferDiscountType is the payment mode of the offer on the next renewal.
	OfferDiscountType string `json:"offerDiscountType,omitempty"`
}
