// Package handlers provides general infrastructure HTTP handlers
// (health, readiness, version, admin).
//
// The admin endpoints are not part of the notification receiver API -
// admin_notifications.go gives development and testing visibility into
// the stored notifications. In production the stored notifications would
// be consumed by downstream systems, not read back over HTTP.
package handlers
