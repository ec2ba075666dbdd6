package appstore

// verifier.go implements the signed-data verification pipeline for App
// Store payloads.
//
// # Verification order
//
// The JWS header is untrusted input: nothing declared in it (algorithm,
// certificate chain) is acted on until the chain has been proven against
// the pinned roots and the signature verified with the chain-validated leaf
// key. Semantic checks (bundle id, app Apple id, environment) run last and
// never substitute for the cryptographic checks.
//
// Every failure is terminal for the call. No partial claims are ever
// returned, and nothing is retried.

import (
	"crypto/x509"
	"encoding/json"
	"fmt"
	"time"

	"github.com/storesignal-io/storesignal/internal/crypto"
)

// SignedDataVerifier verifies and decodes signed App Store payloads.
//
// A verifier is an immutable value: the pinned roots and app configuration
// are fixed at construction, every call is stateless, and instances are
// safe for concurrent use without locking.
type SignedDataVerifier struct {
	// roots is the pinned set of trusted root certificates. Chains that do
	// not terminate at one of these are rejected; system roots are never
	// consulted.
	roots *x509.CertPool

	// environment is the App Store environment this verifier accepts
	// payloads from (Sandbox or Production).
	environment Environment

	// bundleID is the bundle identifier payloads must belong to.
	bundleID string

	// appAppleID is the App Store identifier of the app. Required when
	// environment is Production; notifications are checked against it.
	appAppleID *int64
}

// NewSignedDataVerifier creates a verifier for the given app configuration.
//
// rootCertificates is the pinned trust anchor set as raw DER. A root that
// fails to parse is a construction error - a bad trust anchor must never be
// silently dropped from the pool. No I/O is performed.
func NewSignedDataVerifier(rootCertificates [][]byte, environment Environment, bundleID string, appAppleID *int64) (*SignedDataVerifier, error) {
	if len(rootCertificates) == 0 {
		return nil, fmt.Errorf("at least one root certificate is required")
	}
	if bundleID == "" {
		return nil, fmt.Errorf("bundle id is required")
	}
	if environment != EnvironmentSandbox && environment != EnvironmentProduction {
		return nil, fmt.Errorf("invalid environment %q: must be Sandbox or Production", environment)
	}
	if environment == EnvironmentProduction && appAppleID == nil {
		return nil, fmt.Errorf("app Apple id is required in the Production environment")
	}

	roots, err := crypto.NewCertPoolFromDER(rootCertificates)
	if err != nil {
		return nil, fmt.Errorf("invalid root certificate: %w", err)
	}

	return &SignedDataVerifier{
		roots:       roots,
		environment: environment,
		bundleID:    bundleID,
		appAppleID:  appAppleID,
	}, nil
}

// Environment returns the App Store environment the verifier accepts.
func (v *SignedDataVerifier) Environment() Environment { return v.environment }

// BundleID returns the bundle identifier the verifier accepts.
func (v *SignedDataVerifier) BundleID() string { return v.bundleID }

// VerifyAndDecodeTransaction verifies a signed transaction and returns its
// decoded payload.
//
// The transaction's bundle id must match the configured bundle id
// (identity_mismatch otherwise) and its environment must match the
// configured environment (environment_mismatch otherwise).
func (v *SignedDataVerifier) VerifyAndDecodeTransaction(signedTransaction string) (*TransactionPayload, error) {
	transaction, err := decodeSignedPayload[TransactionPayload](v, signedTransaction)
	if err != nil {
		return nil, err
	}

	if transaction.BundleID == nil || *transaction.BundleID != v.bundleID {
		return nil, NewIdentityMismatchError("transaction bundle id does not match the configured bundle id")
	}

	if transaction.AppEnvironment == nil || *transaction.AppEnvironment != v.environment {
		return nil, NewEnvironmentMismatchError("transaction environment does not match the configured environment")
	}

	return transaction, nil
}

// VerifyAndDecodeNotification verifies an App Store server notification and
// returns its decoded payload.
//
// Identity is checked against whichever sub-record the notification
// carries: data if present, otherwise summary. A notification with neither
// is not a recognized shape and fails with identity_mismatch. In the
// Production environment the sub-record's app Apple id must also match the
// configured id (an absent id on either side is a mismatch).
func (v *SignedDataVerifier) VerifyAndDecodeNotification(signedPayload string) (*NotificationPayload, error) {
	notification, err := decodeSignedPayload[NotificationPayload](v, signedPayload)
	if err != nil {
		return nil, err
	}

	var bundleID *string
	var appAppleID *int64
	var environment *Environment

	switch {
	case notification.Data != nil:
		bundleID = notification.Data.BundleID
		appAppleID = notification.Data.AppAppleID
		environment = notification.Data.AppEnvironment
	case notification.Summary != nil:
		bundleID = notification.Summary.BundleID
		appAppleID = notification.Summary.AppAppleID
		environment = notification.Summary.AppEnvironment
	default:
		return nil, NewIdentityMismatchError("notification carries neither data nor summary")
	}

	if bundleID == nil || *bundleID != v.bundleID {
		return nil, NewIdentityMismatchError("notification bundle id does not match the configured bundle id")
	}

	// Sandbox apps may not have a registered app Apple id, so this check
	// only applies in Production.
	if v.environment == EnvironmentProduction {
		if appAppleID == nil || v.appAppleID == nil || *appAppleID != *v.appAppleID {
			return nil, NewIdentityMismatchError("notification app Apple id does not match the configured app Apple id")
		}
	}

	if environment == nil || *environment != v.environment {
		return nil, NewEnvironmentMismatchError("notification environment does not match the configured environment")
	}

	return notification, nil
}

// VerifyAndDecodeRenewalInfo verifies signed renewal info and returns its
// decoded payload.
//
// Renewal info carries no bundle identity, so only the environment is
// checked.
func (v *SignedDataVerifier) VerifyAndDecodeRenewalInfo(signedRenewalInfo string) (*RenewalInfoPayload, error) {
	renewalInfo, err := decodeSignedPayload[RenewalInfoPayload](v, signedRenewalInfo)
	if err != nil {
		return nil, err
	}

	if renewalInfo.AppEnvironment == nil || *renewalInfo.AppEnvironment != v.environment {
		return nil, NewEnvironmentMismatchError("renewal info environment does not match the configured environment")
	}

	return renewalInfo, nil
}

// decodeSignedPayload runs the cryptographic half of the pipeline: chain
// extraction, chain validation against the pinned roots, signature
// verification with the leaf key, and claim deserialization.
//
// Expiry and registered-claim policy are deliberately not enforced here;
// claim-level semantics belong to the VerifyAndDecode* methods.
func decodeSignedPayload[T any](v *SignedDataVerifier, signedPayload string) (*T, error) {
	// Step 1: parse the protected header. It is unauthenticated until steps
	// 3-4 complete.
	header, err := crypto.ParseJWSHeader(signedPayload)
	if err != nil {
		return nil, WrapMalformedChainError(err, "failed to parse JWS header")
	}

	// Step 2: the header must declare a certificate chain and the pinned
	// algorithm. "none" and every other algorithm are rejected here, before
	// any key material is touched.
	if len(header.X5C) == 0 {
		return nil, NewMissingChainError("JWS header declares no x5c certificate chain")
	}

	if !crypto.Algorithm(header.Algorithm).Supported() {
		return nil, NewUnsupportedAlgorithmError(fmt.Sprintf("unsupported signing algorithm %q: only ES256 is accepted", header.Algorithm))
	}

	// Step 3: decode the chain entries and prove a trust path from the leaf
	// to a pinned root.
	chain, err := crypto.DecodeCertificateChain(header.X5C)
	if err != nil {
		return nil, WrapMalformedChainError(err, "failed to decode x5c certificate chain")
	}

	leafPublicKeyInfo, err := crypto.VerifyCertificateChain(chain, v.roots, time.Time{})
	if err != nil {
		return nil, WrapChainInvalidError(err, "certificate chain does not validate to a pinned root")
	}

	// Step 4: reconstruct the verification key from the uncompressed EC
	// point at the end of the leaf's SubjectPublicKeyInfo and verify the
	// signature with it.
	if len(leafPublicKeyInfo) < crypto.UncompressedPointSize {
		return nil, NewVerificationFailureError("leaf public key info is too short to contain a P-256 point")
	}
	point := leafPublicKeyInfo[len(leafPublicKeyInfo)-crypto.UncompressedPointSize:]

	publicKey, err := crypto.ECPublicKeyFromPoint(point)
	if err != nil {
		return nil, WrapVerificationFailureError(err, "failed to construct verification key from leaf certificate")
	}

	payload, err := crypto.VerifyJWSWithECKey(signedPayload, publicKey)
	if err != nil {
		return nil, WrapVerificationFailureError(err, "JWS signature verification failed")
	}

	// Step 5: deserialize the now-trusted payload.
	var claims T
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, WrapMalformedPayloadError(err, "failed to decode payload claims")
	}

	return &claims, nil
}
