package crypto

// jws.go wraps the go-jose primitives used for JWS signature verification
// and signing. Algorithm choice is pinned at the parse step: go-jose rejects
// any token whose header declares something other than the allowed list, so
// a downgraded or alg:none token never reaches key material.

import (
	"crypto/ecdsa"

	jose "github.com/go-jose/go-jose/v4"
)

// VerifyJWSWithECKey verifies the signature of an ES256 compact JWS against
// the supplied P-256 public key and returns the raw payload bytes.
//
// Only ES256 is accepted. The error does not distinguish "wrong key" from
// "tampered payload" - callers get a single signature failure either way.
func VerifyJWSWithECKey(jws string, publicKey *ecdsa.PublicKey) ([]byte, error) {
	parsed, err := jose.ParseSigned(jws, []jose.SignatureAlgorithm{jose.ES256})
	if err != nil {
		return nil, WrapSignatureError(err, "failed to parse JWS")
	}

	payload, err := parsed.Verify(publicKey)
	if err != nil {
		return nil, WrapSignatureError(err, "JWS signature verification failed")
	}

	return payload, nil
}

// SignES256 signs payload as a compact JWS using ECDSA P-256 with SHA-256.
//
// kid is set in the protected header when non-empty; typ is always "JWT"
// (the platform's token endpoints require it).
func SignES256(payload []byte, key *ecdsa.PrivateKey, kid string) (string, error) {
	opts := (&jose.SignerOptions{}).WithType("JWT")
	if kid != "" {
		opts = opts.WithHeader("kid", kid)
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.ES256, Key: key}, opts)
	if err != nil {
		return "", WrapKeyManagementError(err, "failed to create ES256 signer")
	}

	signed, err := signer.Sign(payload)
	if err != nil {
		return "", WrapInternalError(err, "failed to sign payload")
	}

	compact, err := signed.CompactSerialize()
	if err != nil {
		return "", WrapInternalError(err, "failed to serialize JWS")
	}

	return compact, nil
}
