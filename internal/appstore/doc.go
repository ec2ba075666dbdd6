// Package appstore verifies and decodes signed payloads issued by the App
// Store (signed transactions, App Store Server Notifications V2 and signed
// renewal info).
//
// Every payload is a JWS in compact serialization whose protected header
// carries the signing certificate chain (x5c). Verification is a fixed
// pipeline:
//
//  1. extract the certificate chain from the (unauthenticated) header
//  2. validate the chain against the pinned root certificates
//  3. verify the JWS signature with the leaf certificate's public key
//  4. decode the payload and check it belongs to the configured app
//     (bundle id, app Apple id) and environment
//
// Claims are never returned to the caller unless all four steps succeed.
// The semantic checks in step 4 never substitute for the cryptographic
// checks in steps 2-3; a payload with a matching bundle id but an untrusted
// chain is rejected.
//
// The package also provides the signing-side utilities that go with the
// verification pipeline: App Store Connect API request tokens and
// promotional offer signatures.
package appstore
