// Package services wires the signed-data verifier used by the receiver.
//
// The verifier is built once at startup from the pinned root certificates
// on disk and the configured app identity, and shared by all handlers
// (it is immutable and safe for concurrent use).
package services

import (
	"fmt"

	"github.com/storesignal-io/storesignal/internal/appstore"
	"github.com/storesignal-io/storesignal/internal/config"
)

// Services aggregates the shared components used by the receiver handlers.
type Services struct {
	Verifier *appstore.SignedDataVerifier
}

// NewServices creates service implementations based on configuration.
// This is the single entry point for initializing the receiver's shared
// components; the only I/O is reading the pinned root certificates.
func NewServices(cfg *config.ServerEnvironment) (*Services, error) {
	roots, err := LoadRootCertificates(cfg.RootCADir)
	if err != nil {
		return nil, fmt.Errorf("failed to load root certificates from %s: %w", cfg.RootCADir, err)
	}

	environment, err := appstore.ParseEnvironment(cfg.AppStoreEnvironment)
	if err != nil {
		return nil, err
	}

	var appAppleID *int64
	if cfg.AppAppleID != 0 {
		appAppleID = &cfg.AppAppleID
	}

	verifier, err := appstore.NewSignedDataVerifier(roots, environment, cfg.AppBundleID, appAppleID)
	if err != nil {
		return nil, fmt.Errorf("failed to create signed data verifier: %w", err)
	}

	return &Services{Verifier: verifier}, nil
}
