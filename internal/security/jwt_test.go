package security

import (
	"errors"
	"testing"
	"time"
)

const testJWTSecret = "abcdefghijklmnopqrstuvwxyz123456"

func TestJWTManagerRoundTrip(t *testing.T) {
	mgr := NewJWTManager("hashebooks-auth", "authenticated", testJWTSecret, time.Hour)
	raw, err := mgr.SignAccessToken("user-1", "Admin@Example.com")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := mgr.ParseAccessToken(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "admin@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTManagerRejectsForeignAndExpiredTokens(t *testing.T) {
	mgr := NewJWTManager("hashebooks-auth", "authenticated", testJWTSecret, time.Minute)

	other := NewJWTManager("hashebooks-auth", "authenticated", "zyxwvutsrqponmlkjihgfedcba654321", time.Minute)
	forged, err := other.SignAccessToken("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("sign forged: %v", err)
	}
	if _, err := mgr.ParseAccessToken(forged); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong key, got %v", err)
	}

	wrongAudience := NewJWTManager("hashebooks-auth", "service_role", testJWTSecret, time.Minute)
	raw, err := wrongAudience.SignAccessToken("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("sign audience: %v", err)
	}
	if _, err := mgr.ParseAccessToken(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong audience, got %v", err)
	}

	past := NewJWTManager("hashebooks-auth", "authenticated", testJWTSecret, time.Minute)
	past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := past.SignAccessToken("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("sign expired: %v", err)
	}
	if _, err := mgr.ParseAccessToken(expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}

	if _, err := mgr.ParseAccessToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestJWTManagerRejectsMissingSubject(t *testing.T) {
	mgr := NewJWTManager("hashebooks-auth", "authenticated", testJWTSecret, time.Minute)
	raw, err := mgr.SignAccessToken("", "a@example.com")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := mgr.ParseAccessToken(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
