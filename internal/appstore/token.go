package appstore

// token.go mints the ES256 bearer tokens used to call the App Store
// Connect API. The token is an ordinary compact JWS built with the same
// signing primitives the verification side uses, signed with the
// developer's downloaded .p8 key.

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"time"

	"github.com/storesignal-io/storesignal/internal/crypto"
)

// apiTokenAudience is the fixed audience claim the App Store Connect API
// requires.
const apiTokenAudience = "appstoreconnect-v1"

// maxAPITokenLifetime is the longest expiry the App Store Connect API
// accepts for a request token.
const maxAPITokenLifetime = 20 * time.Minute

// APITokenConfig describes the signing key and app identity used to mint
// App Store Connect API tokens.
type APITokenConfig struct {
	// SigningKey is the developer's API private key (the .p8 download).
	SigningKey *ecdsa.PrivateKey

	// KeyID is the App Store Connect key identifier of the signing key.
	KeyID string

	// IssuerID is the issuer identifier from the App Store Connect API keys
	// page.
	IssuerID string

	// BundleID is the bundle identifier the token is scoped to.
	BundleID string
}

// apiTokenClaims is the claim set of an App Store Connect API token.
type apiTokenClaims struct {
	Issuer   string `json:"iss"`
	IssuedAt int64  `json:"iat"`
	Expiry   int64  `json:"exp"`
	Audience string `json:"aud"`
	BundleID string `json:"bid"`
}

// NewAPIToken mints a signed App Store Connect API token valid for ttl.
//
// The API rejects tokens with a lifetime over 20 minutes, so ttl is capped
// there. A zero or negative ttl gets the maximum.
func NewAPIToken(cfg APITokenConfig, ttl time.Duration) (string, error) {
	if cfg.SigningKey == nil {
		return "", fmt.Errorf("signing key is required")
	}
	if cfg.KeyID == "" {
		return "", fmt.Errorf("key id is required")
	}
	if cfg.IssuerID == "" {
		return "", fmt.Errorf("issuer id is required")
	}
	if cfg.BundleID == "" {
		return "", fmt.Errorf("bundle id is required")
	}

	if ttl <= 0 || ttl > maxAPITokenLifetime {
		ttl = maxAPITokenLifetime
	}

	now := time.Now()
	claims := apiTokenClaims{
		Issuer:   cfg.IssuerID,
		IssuedAt: now.Unix(),
		Expiry:   now.Add(ttl).Unix(),
		Audience: apiTokenAudience,
		BundleID: cfg.BundleID,
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", WrapInternalError(err, "failed to marshal token claims")
	}

	token, err := crypto.SignES256(payload, cfg.SigningKey, cfg.KeyID)
	if err != nil {
		return "", WrapInternalError(err, "failed to sign API token")
	}

	return token, nil
}
