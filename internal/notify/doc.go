// Package notify implements the HTTP surface of the App Store Server
// Notifications receiver: request/response types, the error response
// format, and the mapping from verification errors to HTTP status codes.
//
// Cryptographic failures map to 401 (the payload cannot be trusted and may
// be an attack), malformed requests to 400, identity and environment
// mismatches to 422 (routine misconfiguration), so operators can alert on
// them differently.
package notify
