package appstore

// offer.go produces promotional offer signatures. The signature is an
// ECDSA/ASN.1 signature over a fixed field sequence joined by U+2063
// (invisible separator), exactly as StoreKit expects it, returned as
// standard base64 for embedding in the client-side purchase call.

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// offerFieldSeparator is U+2063 INVISIBLE SEPARATOR, the delimiter StoreKit
// uses between the signed fields.
const offerFieldSeparator = "⁣"

// OfferSignatureConfig describes the signing key and app identity used to
// produce promotional offer signatures.
type OfferSignatureConfig struct {
	// SigningKey is the subscription offer key downloaded from App Store
	// Connect.
	SigningKey *ecdsa.PrivateKey

	// KeyID is the identifier of the signing key.
	KeyID string

	// BundleID is the bundle identifier of the app presenting the offer.
	BundleID string
}

// OfferSignature is a promotional offer signature plus the nonce and
// timestamp that were signed. The client must present all three to
// StoreKit unchanged.
type OfferSignature struct {
	// Signature is the base64-encoded ECDSA signature.
	Signature string `json:"signature"`

	// Nonce is the single-use lowercase UUID included in the signature.
	Nonce string `json:"nonce"`

	// Timestamp is the signing time in milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`

	// KeyID identifies the key the offer was signed with.
	KeyID string `json:"keyIdentifier"`
}

// SignOffer produces a promotional offer signature for the given product,
// offer and (optional) obfuscated application username.
//
// A fresh nonce is generated per call, so two calls with identical inputs
// produce different signatures.
func SignOffer(cfg OfferSignatureConfig, productID, offerID, applicationUsername string, timestampMillis int64) (*OfferSignature, error) {
	if cfg.SigningKey == nil {
		return nil, fmt.Errorf("signing key is required")
	}
	if cfg.KeyID == "" {
		return nil, fmt.Errorf("key id is required")
	}
	if cfg.BundleID == "" {
		return nil, fmt.Errorf("bundle id is required")
	}
	if productID == "" {
		return nil, fmt.Errorf("product id is required")
	}
	if offerID == "" {
		return nil, fmt.Errorf("offer id is required")
	}

	// StoreKit compares the nonce case-insensitively but the signed form
	// must be lowercase.
	nonce := strings.ToLower(uuid.NewString())

	payload := strings.Join([]string{
		cfg.BundleID,
		cfg.KeyID,
		productID,
		offerID,
		applicationUsername,
		nonce,
		strconv.FormatInt(timestampMillis, 10),
	}, offerFieldSeparator)

	digest := sha256.Sum256([]byte(payload))

	signature, err := ecdsa.SignASN1(rand.Reader, cfg.SigningKey, digest[:])
	if err != nil {
		return nil, WrapInternalError(err, "failed to sign offer payload")
	}

	return &OfferSignature{
		Signature: base64.StdEncoding.EncodeToString(signature),
		Nonce:     nonce,
		Timestamp: timestampMillis,
		KeyID:     cfg.KeyID,
	}, nil
}
