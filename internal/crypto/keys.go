package crypto

// keys.go handles EC P-256 key material: generation, PEM file load/save and
// reconstruction of a verification key from an uncompressed curve point.
// P-256 is the only curve in play - it is what the platform signs with and
// what the App Store Connect API accepts for request signing keys.

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
)

// UncompressedPointSize is the length of an uncompressed P-256 point:
// a 0x04 tag byte followed by the 32-byte X and Y coordinates.
const UncompressedPointSize = 65

// GenerateECKeyPair generates a new ECDSA P-256 key pair.
func GenerateECKeyPair() (*ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to generate EC key pair")
	}
	return key, nil
}

// ECPublicKeyFromPoint reconstructs a P-256 public key from an uncompressed
// curve point (0x04 || X || Y, 65 bytes). This is how the verification key
// is built from the trailing bytes of a leaf certificate's public key info.
//
// The point is validated against the curve before the key is returned.
func ECPublicKeyFromPoint(point []byte) (*ecdsa.PublicKey, error) {
	if len(point) != UncompressedPointSize {
		return nil, NewKeyManagementError(fmt.Sprintf("invalid EC point: expected %d bytes, got %d", UncompressedPointSize, len(point)))
	}
	if point[0] != 0x04 {
		return nil, NewKeyManagementError("invalid EC point: not in uncompressed form")
	}

	// ecdh rejects points that are not on the curve
	if _, err := ecdh.P256().NewPublicKey(point); err != nil {
		return nil, WrapKeyManagementError(err, "invalid EC point")
	}

	return &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(point[1:33]),
		Y:     new(big.Int).SetBytes(point[33:65]),
	}, nil
}

// LoadECPrivateKeyFromFile loads a PEM-encoded EC private key.
//
// Both PKCS#8 ("PRIVATE KEY", the App Store Connect .p8 download format) and
// SEC 1 ("EC PRIVATE KEY") encodings are accepted.
func LoadECPrivateKeyFromFile(path string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- key path is operator-supplied configuration
	if err != nil {
		return nil, WrapKeyManagementError(err, fmt.Sprintf("failed to read key file %s", path))
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, NewKeyManagementError(fmt.Sprintf("no PEM block found in %s", path))
	}

	if parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		ecKey, ok := parsed.(*ecdsa.PrivateKey)
		if !ok {
			return nil, NewKeyManagementError(fmt.Sprintf("key in %s is %T, expected EC private key", path, parsed))
		}
		return ecKey, nil
	}

	ecKey, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, WrapKeyManagementError(err, fmt.Sprintf("failed to parse EC private key from %s", path))
	}
	return ecKey, nil
}

// SaveECPrivateKeyToFile writes the key to path as PKCS#8 PEM with 0600
// permissions.
func SaveECPrivateKeyToFile(key *ecdsa.PrivateKey, path string) error {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return WrapKeyManagementError(err, "failed to marshal EC private key")
	}

	block := &pem.Block{Type: "PRIVATE KEY", Bytes: der}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		return WrapKeyManagementError(err, fmt.Sprintf("failed to write key file %s", path))
	}
	return nil
}
