package services

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"mis/api/internal/core/domain"
)

// MISClaims mirrors the payload the auth endpoints issue: {id, role} plus exp/iat.
type MISClaims struct {
	ID   int    `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenVerifier checks bearer tokens. Issuance lives with the auth endpoints.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify validates signature and expiry and returns the caller identity.
func (v *TokenVerifier) Verify(tokenString string) (*domain.UserClaims, error) {
	if len(v.secret) == 0 {
		return nil, errors.New("token verification is not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &MISClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 🛡️ Force the signing method check; never accept "none" or RSA confusion.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid token signature or expired: %w", err)
	}

	claims, ok := token.Claims.(*MISClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.ID <= 0 {
		return nil, fmt.Errorf("malformed subject claim")
	}

	return &domain.UserClaims{UserID: claims.ID, Role: claims.Role}, nil
}
