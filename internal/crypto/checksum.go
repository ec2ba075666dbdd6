// checksum.go calculates checksums for stored notification payloads.
//
// Decoded payloads are canonicalized per RFC 8785 before hashing so that the
// same notification always produces the same checksum regardless of field
// ordering. The receiver stores the checksum alongside the payload, which
// makes duplicate deliveries and post-hoc tampering cheap to detect.

package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/gowebpki/jcs"
)

// CanonicalizeJSON converts JSON to canonical form per RFC 8785.
//
// If the input is not valid JSON, an error is returned (handled by jcs library).
func CanonicalizeJSON(jsonData []byte) ([]byte, error) {
	return jcs.Transform(jsonData)
}

// CalculateSHA256Hex calculates the SHA-256 checksum of data and returns it as a hex string
func CalculateSHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// PayloadChecksum canonicalizes a JSON payload and returns the hex SHA-256
// of the canonical form.
func PayloadChecksum(jsonData []byte) (string, error) {
	if len(jsonData) == 0 {
		return "", fmt.Errorf("payload is empty")
	}

	canonical, err := CanonicalizeJSON(jsonData)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize payload: %w", err)
	}

	return CalculateSHA256Hex(canonical), nil
}

// VerifyChecksum verifies that data matches the expected SHA-256 checksum
func VerifyChecksum(data []byte, expectedChecksum string) bool {
	return CalculateSHA256Hex(data) == expectedChecksum
}
