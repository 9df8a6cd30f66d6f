package security

import (
	"testing"
	"time"

	"github.com/geniusbot/core/internal/ports"
)

func TestJWTSignerRoundTrip(t *testing.T) {
	t.Parallel()

	signer, err := NewJWTSigner("test-secret-at-least-32-characters", time.Hour)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	issued := time.Now().UTC().Truncate(time.Second)
	raw, err := signer.Sign(ports.WebClaims{
		AccountID:    "ABCD1234",
		SessionToken: "deadbeef",
		IssuedAt:     issued,
	})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := signer.ParseAndValidate(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.AccountID != "ABCD1234" || claims.SessionToken != "deadbeef" {
		t.Fatalf("claims did not round-trip: %+v", claims)
	}
	if claims.ExpiresAt.Before(issued) {
		t.Fatalf("expiry should default past issue time: %+v", claims)
	}
}

func TestJWTSignerRejectsForeignToken(t *testing.T) {
	t.Parallel()

	first, err := NewEphemeralJWTSigner(time.Hour)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	second, err := NewEphemeralJWTSigner(time.Hour)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	raw, err := first.Sign(ports.WebClaims{AccountID: "A", SessionToken: "T"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := second.ParseAndValidate(raw); err == nil {
		t.Fatalf("token signed with another key must not validate")
	}
	if _, err := first.ParseAndValidate(raw + "x"); err == nil {
		t.Fatalf("tampered token must not validate")
	}
}

func TestJWTSignerRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewJWTSigner("", time.Hour); err == nil {
		t.Fatalf("empty secret must be rejected")
	}
}

func TestBcryptHasherRoundTrip(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(4)
	hash, err := hasher.Hash("SecurePass123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := hasher.Compare(hash, "SecurePass123"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := hasher.Compare(hash, "WrongPass123"); err == nil {
		t.Fatalf("wrong password must not compare")
	}
}
