// Package server provides the HTTP server for the notification receiver.
//
// the server is configured through environment variables
// (see internal/config/config.go for details)
//
// The package wires up
//   - the notification receiver endpoint (internal/notify/handlers)
//   - common infrastructure handlers (health, readiness, version)
//   - the admin endpoints for inspecting stored notifications
//
// middleware is in internal/server/middleware
package server
