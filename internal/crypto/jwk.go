// JWK (JSON Web Key) helpers for storesignal key tooling
//
// these functions convert raw EC P-256 keys to JWK format (and vice versa)
// Reference: https://datatracker.ietf.org/doc/html/rfc7517 (JSON Web Key standard)
//
// they are used by the keygen CLI to produce distributable public keys for
// App Store Connect API signing key pairs, and by tests to round-trip keys.

package crypto

import (
	"crypto"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// ECPublicKeyToJWK converts an EC P-256 public key to JWK format
func ECPublicKeyToJWK(publicKey *ecdsa.PublicKey, keyID string) (jwk.Key, error) {
	if publicKey == nil {
		return nil, fmt.Errorf("public key is nil")
	}
	if keyID == "" {
		return nil, fmt.Errorf("keyID is required")
	}

	// create the jwk key
	key, err := jwk.Import(publicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWK from EC public key: %w", err)
	}

	// Set key ID
	if err := key.Set(jwk.KeyIDKey, keyID); err != nil {
		return nil, fmt.Errorf("failed to set key ID: %w", err)
	}

	// Set algorithm
	if err := key.Set(jwk.AlgorithmKey, jwa.ES256()); err != nil {
		return nil, fmt.Errorf("failed to set algorithm: %w", err)
	}

	// Set key usage
	if err := key.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
		return nil, fmt.Errorf("failed to set key usage: %w", err)
	}

	return key, nil
}

// ECPrivateKeyToJWK converts an EC P-256 private key to JWK format
func ECPrivateKeyToJWK(privateKey *ecdsa.PrivateKey, keyID string) (jwk.Key, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("private key is nil")
	}
	if keyID == "" {
		return nil, fmt.Errorf("keyID is required")
	}

	key, err := jwk.Import(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWK from EC private key: %w", err)
	}

	// Set key ID
	if err := key.Set(jwk.KeyIDKey, keyID); err != nil {
		return nil, fmt.Errorf("failed to set key ID: %w", err)
	}

	// Set algorithm
	if err := key.Set(jwk.AlgorithmKey, jwa.ES256()); err != nil {
		return nil, fmt.Errorf("failed to set algorithm: %w", err)
	}

	// Set key usage
	if err := key.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
		return nil, fmt.Errorf("failed to set key usage: %w", err)
	}

	return key, nil
}

// JWKToECPublicKey converts a JWK back to a native EC public key
func JWKToECPublicKey(key jwk.Key) (*ecdsa.PublicKey, error) {
	if key == nil {
		return nil, fmt.Errorf("key is nil")
	}

	var raw any
	// Export to raw key
	if err := jwk.Export(key, &raw); err != nil {
		return nil, fmt.Errorf("failed to export EC public key: %w", err)
	}

	ecPublicKey, ok := raw.(*ecdsa.PublicKey)
	if !ok {
		alg, _ := key.Algorithm()
		return nil, fmt.Errorf("expected EC public key but got key with algorithm %v and type %T", alg, raw)
	}

	return ecPublicKey, nil
}

// GenerateKeyIDFromECKey generates a key ID from an EC public key using SHA-256 thumbprint.
//
// The key ID is the first 16 hex characters of the RFC 7638 thumbprint.
func GenerateKeyIDFromECKey(publicKey *ecdsa.PublicKey) (string, error) {
	if publicKey == nil {
		return "", fmt.Errorf("public key is nil")
	}

	// Import to JWK to calculate thumbprint
	jwkKey, err := jwk.Import(publicKey)
	if err != nil {
		return "", fmt.Errorf("failed to import key: %w", err)
	}

	thumbprint, err := jwkKey.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("failed to generate thumbprint: %w", err)
	}

	return fmt.Sprintf("%x", thumbprint)[:16], nil
}

// SaveECPublicKeyToFile writes the public key as an indented JWK JSON file.
func SaveECPublicKeyToFile(publicKey *ecdsa.PublicKey, keyID string, path string) error {
	key, err := ECPublicKeyToJWK(publicKey, keyID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(key, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JWK: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil { // #nosec G306 -- public key material
		return fmt.Errorf("failed to write JWK file %s: %w", path, err)
	}
	return nil
}

// LoadECPublicKeyFromJWKFile reads a JWK file and returns the EC public key
// and its key ID.
func LoadECPublicKeyFromJWKFile(path string) (*ecdsa.PublicKey, string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- key path is operator-supplied configuration
	if err != nil {
		return nil, "", fmt.Errorf("failed to read JWK file %s: %w", path, err)
	}

	key, err := jwk.ParseKey(data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse JWK file %s: %w", path, err)
	}

	publicKey, err := JWKToECPublicKey(key)
	if err != nil {
		return nil, "", err
	}

	kid, _ := key.KeyID()
	return publicKey, kid, nil
}
