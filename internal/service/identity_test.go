package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestTokenVerifier_ValidToken(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")
	signed := signTestToken(t, "test-secret", Claims{
		UserID: "user-42",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := verifier.ParseAccessToken(signed)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != "user-42" {
		t.Fatalf("unexpected user id: %q", claims.UserID)
	}
}

func TestTokenVerifier_SubjectFallback(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")
	signed := signTestToken(t, "test-secret", Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "subject-user",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := verifier.ParseAccessToken(signed)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != "subject-user" {
		t.Fatalf("expected subject fallback, got %q", claims.UserID)
	}
}

func TestTokenVerifier_WrongSecret(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")
	signed := signTestToken(t, "other-secret", Claims{UserID: "u"})

	if _, err := verifier.ParseAccessToken(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenVerifier_ExpiredToken(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")
	signed := signTestToken(t, "test-secret", Claims{
		UserID: "u",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	if _, err := verifier.ParseAccessToken(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenVerifier_NoUserID(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")
	signed := signTestToken(t, "test-secret", Claims{})

	if _, err := verifier.ParseAccessToken(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenVerifier_NotConfigured(t *testing.T) {
	if v := NewTokenVerifier("   "); v != nil {
		t.Fatal("blank secret should yield a nil verifier")
	}

	var verifier *TokenVerifier
	if _, err := verifier.ParseAccessToken("anything"); !errors.Is(err, ErrVerifierNotConfigured) {
		t.Fatalf("expected ErrVerifierNotConfigured, got %v", err)
	}
}
