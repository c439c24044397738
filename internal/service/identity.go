package service

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// La identidad la emite el proveedor externo de auth; aqui solo se verifican
// los access tokens firmados con el secreto compartido.

var (
	ErrTokenInvalid          = errors.New("token invalid")
	ErrVerifierNotConfigured = errors.New("token verifier not configured")
)

// Claims son los claims minimos que el backend necesita de un access token.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// TokenVerifier valida access tokens HMAC del proveedor de identidad.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	if strings.TrimSpace(secret) == "" {
		return nil
	}
	return &TokenVerifier{secret: []byte(secret)}
}

// ParseAccessToken valida firma y expiracion y devuelve los claims.
func (v *TokenVerifier) ParseAccessToken(token string) (Claims, error) {
	if v == nil {
		return Claims{}, ErrVerifierNotConfigured
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}
