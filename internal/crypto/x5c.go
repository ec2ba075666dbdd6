package crypto

// x5c.go handles the certificate chains embedded in signed App Store payloads.
//
// Every signed payload is a JWS whose protected header carries an x5c field:
// an ordered list of base64 (standard encoding) DER certificates, leaf first.
// The leaf key is only trusted after the chain has been validated against the
// pinned root set, so extraction, decoding and validation are separate steps
// with separate failure modes.

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JWSHeader is the subset of the protected header this pipeline inspects.
// The header is unauthenticated until the chain is proven and the signature
// verified, so nothing here may be acted on before VerifyCertificateChain
// and the signature check have both succeeded.
type JWSHeader struct {
	Algorithm string   `json:"alg"`
	X5C       []string `json:"x5c"`
}

// ParseJWSHeader decodes the protected header of a JWS compact serialization
// without verifying the signature.
//
// Returns a validation error if the string is not three dot-separated
// segments or the header segment is not base64url-encoded JSON.
func ParseJWSHeader(jws string) (*JWSHeader, error) {
	parts := strings.Split(jws, ".")
	if len(parts) != 3 {
		return nil, NewValidationError(fmt.Sprintf("invalid JWS format: expected 3 parts, got %d", len(parts)))
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, WrapValidationError(err, "failed to decode JWS header")
	}

	var header JWSHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, WrapValidationError(err, "failed to parse JWS header")
	}

	return &header, nil
}

// DecodeCertificateChain decodes the x5c header entries from standard base64
// into DER. The result preserves order (leaf first).
//
// Returns a validation error naming the offending entry if any fails to
// decode. Certificate parsing is deliberately not done here - a chain entry
// that decodes to garbage DER is a chain validation failure, not a transport
// decoding failure.
func DecodeCertificateChain(x5c []string) ([][]byte, error) {
	chain := make([][]byte, 0, len(x5c))
	for i, entry := range x5c {
		der, err := base64.StdEncoding.DecodeString(entry)
		if err != nil {
			return nil, WrapValidationError(err, fmt.Sprintf("failed to decode certificate %d in x5c chain", i))
		}
		chain = append(chain, der)
	}
	return chain, nil
}

// VerifyCertificateChain proves that a trust path exists from the leaf
// (first element) through any intermediates to a certificate in roots, and
// returns the leaf's raw SubjectPublicKeyInfo bytes.
//
// effectiveDate is the instant at which certificate validity periods are
// evaluated; the zero value means the current time. The chain must be
// non-empty and every element must parse as DER.
//
// All failures (malformed certificate, broken link, expired or not yet
// valid, root not pinned) return a certificate error. No partial result is
// ever returned.
func VerifyCertificateChain(chain [][]byte, roots *x509.CertPool, effectiveDate time.Time) ([]byte, error) {
	if len(chain) == 0 {
		return nil, NewCertificateError("empty certificate chain")
	}

	certs := make([]*x509.Certificate, 0, len(chain))
	for i, der := range chain {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, WrapCertificateError(err, fmt.Sprintf("failed to parse certificate %d", i))
		}
		certs = append(certs, cert)
	}

	// The leaf is verified against the pinned roots with everything after it
	// offered as intermediates. System roots are never consulted.
	intermediates := x509.NewCertPool()
	for _, cert := range certs[1:] {
		intermediates.AddCert(cert)
	}

	leaf := certs[0]
	opts := x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		CurrentTime:   effectiveDate,
		// Path validation only. Platform leaf certificates carry
		// platform-specific extended key usage OIDs, not TLS ones.
		KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}

	if _, err := leaf.Verify(opts); err != nil {
		return nil, WrapCertificateError(err, "certificate chain validation failed")
	}

	return leaf.RawSubjectPublicKeyInfo, nil
}

// NewCertPoolFromDER builds a certificate pool from raw DER certificates.
// Used to turn the pinned root set into the form the path validator needs.
// Fails if any certificate does not parse - a misconfigured trust anchor
// must never be silently skipped.
func NewCertPoolFromDER(certificates [][]byte) (*x509.CertPool, error) {
	pool := x509.NewCertPool()
	for i, der := range certificates {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, WrapCertificateError(err, fmt.Sprintf("failed to parse root certificate %d", i))
		}
		pool.AddCert(cert)
	}
	return pool, nil
}
