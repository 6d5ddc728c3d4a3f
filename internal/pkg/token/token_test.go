package token

import (
	"errors"
	"testing"
	"time"

	"taskhub/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueDecode_RoundTrip(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	raw, err := svc.Issue("alice@x.com", model.RoleUser)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if raw == "" {
		t.Fatalf("expected non-empty token")
	}

	claims, err := svc.Decode(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if claims.Subject != "alice@x.com" {
		t.Fatalf("expected subject alice@x.com, got %q", claims.Subject)
	}
	if claims.Role != string(model.RoleUser) {
		t.Fatalf("expected role USER, got %q", claims.Role)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) <= 0 {
		t.Fatalf("expected expiry in the future")
	}
}

func TestDecode_Expired(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	// 手工签发一个已过期的令牌
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice@x.com",
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-1 * time.Hour)),
		},
		Role: string(model.RoleUser),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := svc.Decode(raw); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestDecode_WrongKey(t *testing.T) {
	issuer := NewService("secret-a", time.Hour)
	verifier := NewService("secret-b", time.Hour)

	raw, err := issuer.Issue("alice@x.com", model.RoleUser)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := verifier.Decode(raw); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	for _, raw := range []string{"", "   ", "not-a-token", "a.b"} {
		if _, err := svc.Decode(raw); !errors.Is(err, ErrMalformed) {
			t.Fatalf("input %q: expected ErrMalformed, got %v", raw, err)
		}
	}
}

func TestDecode_UnsupportedAlgorithm(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice@x.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := svc.Decode(raw); !errors.Is(err, ErrUnsupportedAlg) {
		t.Fatalf("expected ErrUnsupportedAlg, got %v", err)
	}
}

func TestDecode_EmptySubject(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	raw, err := svc.Issue("", model.RoleUser)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := svc.Decode(raw); !errors.Is(err, ErrEmptyClaims) {
		t.Fatalf("expected ErrEmptyClaims, got %v", err)
	}
}
