// algorithm.go defines the signing algorithm accepted by storesignal.
// The App Store signs every payload with ES256; nothing else is negotiated.
package crypto

// Algorithm identifies a JWS signing algorithm.
type Algorithm string

const (
	// AlgorithmES256: ECDSA with P-256 and SHA-256. The only algorithm the
	// platform uses for signed transactions, renewal info and notifications.
	AlgorithmES256 Algorithm = "ES256"
)

// Supported reports whether the algorithm is accepted for verification.
// Anything other than ES256 (including "none") is rejected.
func (a Algorithm) Supported() bool {
	return a == AlgorithmES256
}
