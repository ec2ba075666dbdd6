package crypto

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestECPublicKeyJWKRoundTrip(t *testing.T) {
	key, err := GenerateECKeyPair()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	kid, err := GenerateKeyIDFromECKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("failed to generate key id: %v", err)
	}
	if len(kid) != 16 {
		t.Errorf("expected 16 hex character key id, got %q", kid)
	}

	jwkKey, err := ECPublicKeyToJWK(&key.PublicKey, kid)
	if err != nil {
		t.Fatalf("failed to convert to JWK: %v", err)
	}

	gotKid, _ := jwkKey.KeyID()
	if gotKid != kid {
		t.Errorf("expected kid %q, got %q", kid, gotKid)
	}

	back, err := JWKToECPublicKey(jwkKey)
	if err != nil {
		t.Fatalf("failed to convert back: %v", err)
	}
	if !back.Equal(&key.PublicKey) {
		t.Error("round-tripped key does not match the original")
	}
}

func TestECPublicKeyToJWKValidation(t *testing.T) {
	key, err := GenerateECKeyPair()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	if _, err := ECPublicKeyToJWK(nil, "kid"); err == nil {
		t.Error("expected error for nil key")
	}
	if _, err := ECPublicKeyToJWK(&key.PublicKey, ""); err == nil {
		t.Error("expected error for empty key id")
	}
	if _, err := ECPrivateKeyToJWK(nil, "kid"); err == nil {
		t.Error("expected error for nil private key")
	}
}

func TestECPublicKeyJWKFileRoundTrip(t *testing.T) {
	key, err := GenerateECKeyPair()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	kid, err := GenerateKeyIDFromECKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("failed to generate key id: %v", err)
	}

	path := filepath.Join(t.TempDir(), "signing.public.jwk")
	if err := SaveECPublicKeyToFile(&key.PublicKey, kid, path); err != nil {
		t.Fatalf("failed to save JWK: %v", err)
	}

	loaded, loadedKid, err := LoadECPublicKeyFromJWKFile(path)
	if err != nil {
		t.Fatalf("failed to load JWK: %v", err)
	}
	if loadedKid != kid {
		t.Errorf("expected kid %q, got %q", kid, loadedKid)
	}
	if !loaded.Equal(&key.PublicKey) {
		t.Error("loaded key does not match the saved key")
	}
}

func TestLoadECPublicKeyFromJWKFileErrors(t *testing.T) {
	_, _, err := LoadECPublicKeyFromJWKFile(filepath.Join(t.TempDir(), "missing.jwk"))
	if err == nil || !strings.Contains(err.Error(), "failed to read JWK file") {
		t.Errorf("expected read error, got %v", err)
	}
}
