// Package testutil provides in-memory certificate and JWS fixtures for
// tests that exercise the signed-data verification pipeline.
//
// A SigningAuthority is a self-signed P-256 root CA with an intermediate
// and a leaf signing key, mimicking the chain shape the App Store embeds in
// its x5c headers. Payloads signed with Sign verify successfully against
// the authority's root; the other signing helpers produce deliberately
// broken envelopes for failure-path tests.
package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// SigningAuthority is a throwaway certificate hierarchy for tests.
type SigningAuthority struct {
	// RootDER is the self-signed root certificate (the trust anchor tests
	// hand to the verifier).
	RootDER []byte

	// IntermediateDER is the CA certificate between root and leaf.
	IntermediateDER []byte

	// LeafDER is the signing certificate whose key signs test payloads.
	LeafDER []byte

	// LeafKey is the private key matching LeafDER.
	LeafKey *ecdsa.PrivateKey
}

// NewSigningAuthority generates a root -> intermediate -> leaf P-256
// hierarchy valid for 24 hours.
func NewSigningAuthority() (*SigningAuthority, error) {
	notBefore := time.Now().Add(-time.Hour)
	notAfter := time.Now().Add(24 * time.Hour)

	rootKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate root key: %w", err)
	}
	rootTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Test Root CA"},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	rootDER, err := x509.CreateCertificate(rand.Reader, rootTemplate, rootTemplate, &rootKey.PublicKey, rootKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create root certificate: %w", err)
	}
	rootCert, err := x509.ParseCertificate(rootDER)
	if err != nil {
		return nil, fmt.Errorf("failed to parse root certificate: %w", err)
	}

	intermediateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate intermediate key: %w", err)
	}
	intermediateTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(2),
		Subject:               pkix.Name{CommonName: "Test Intermediate CA"},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	intermediateDER, err := x509.CreateCertificate(rand.Reader, intermediateTemplate, rootCert, &intermediateKey.PublicKey, rootKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create intermediate certificate: %w", err)
	}
	intermediateCert, err := x509.ParseCertificate(intermediateDER)
	if err != nil {
		return nil, fmt.Errorf("failed to parse intermediate certificate: %w", err)
	}

	leafKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate leaf key: %w", err)
	}
	leafTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(3),
		Subject:      pkix.Name{CommonName: "Test Signing Leaf"},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leafTemplate, intermediateCert, &leafKey.PublicKey, intermediateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create leaf certificate: %w", err)
	}

	return &SigningAuthority{
		RootDER:         rootDER,
		IntermediateDER: intermediateDER,
		LeafDER:         leafDER,
		LeafKey:         leafKey,
	}, nil
}

// Chain returns the x5c header entries (leaf first, standard base64).
func (a *SigningAuthority) Chain() []string {
	return []string{
		base64.StdEncoding.EncodeToString(a.LeafDER),
		base64.StdEncoding.EncodeToString(a.IntermediateDER),
		base64.StdEncoding.EncodeToString(a.RootDER),
	}
}

// Sign produces a valid ES256 compact JWS over claims with the full chain
// in the x5c header.
func (a *SigningAuthority) Sign(claims any) (string, error) {
	return a.SignWithHeader(claims, "ES256", a.Chain())
}

// SignWithHeader produces a compact JWS with an arbitrary declared
// algorithm and x5c list. The signature itself is always ES256 with the
// leaf key, which is exactly what algorithm-pinning and chain-tampering
// tests need: a token that would verify were the header honest.
func (a *SigningAuthority) SignWithHeader(claims any, alg string, x5c []string) (string, error) {
	header := map[string]any{"alg": alg}
	if x5c != nil {
		header["x5c"] = x5c
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(payloadJSON)

	digest := sha256.Sum256([]byte(signingInput))
	r, s, err := ecdsa.Sign(rand.Reader, a.LeafKey, digest[:])
	if err != nil {
		return "", fmt.Errorf("failed to sign: %w", err)
	}

	// JWS ES256 signatures are the raw 32-byte R and S values concatenated.
	signature := make([]byte, 64)
	r.FillBytes(signature[:32])
	s.FillBytes(signature[32:64])

	return signingInput + "." + base64.RawURLEncoding.EncodeToString(signature), nil
}

// SignRawPayload produces a valid ES256 compact JWS over a pre-encoded
// payload, for tests that need payloads which are not JSON objects.
func (a *SigningAuthority) SignRawPayload(payload []byte) (string, error) {
	header := map[string]any{"alg": "ES256", "x5c": a.Chain()}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(payload)

	digest := sha256.Sum256([]byte(signingInput))
	r, s, err := ecdsa.Sign(rand.Reader, a.LeafKey, digest[:])
	if err != nil {
		return "", fmt.Errorf("failed to sign: %w", err)
	}

	signature := make([]byte, 64)
	r.FillBytes(signature[:32])
	s.FillBytes(signature[32:64])

	return signingInput + "." + base64.RawURLEncoding.EncodeToString(signature), nil
}

// TamperPayload swaps the payload segment of a compact JWS without
// re-signing, producing a token whose signature no longer matches.
func TamperPayload(jws string, claims any) (string, error) {
	parts := strings.Split(jws, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid JWS format: expected 3 parts, got %d", len(parts))
	}

	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	parts[1] = base64.RawURLEncoding.EncodeToString(payloadJSON)
	return strings.Join(parts, "."), nil
}
