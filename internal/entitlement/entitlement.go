// Package entitlement verifies signed entitlement tokens. Premium
// resurfacing features are gated on a valid, unexpired token carrying the
// premium claim.
package entitlement

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/loopjournal/loop/internal/common"
)

// Claims are the entitlement token claims.
type Claims struct {
	jwt.RegisteredClaims
	Premium bool `json:"premium"`
}

// GenerateToken mints an entitlement token. Used by tests and provisioning
// tooling; the app itself only verifies.
func GenerateToken(premium bool, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		Premium: premium,
	})
	return token.SignedString(secretKey)
}

// TokenVerifier implements the entitlement check over a static token, e.g.
// one delivered with the user's subscription receipt.
type TokenVerifier struct {
	token     string
	secretKey []byte
}

func NewTokenVerifier(token string, secretKey []byte) *TokenVerifier {
	return &TokenVerifier{token: token, secretKey: secretKey}
}

// IsEntitled reports whether the configured token is valid, unexpired and
// premium. Any parse or signature failure simply means not entitled.
func (v *TokenVerifier) IsEntitled(ctx context.Context) bool {
	premium, err := verify(v.token, v.secretKey)
	return err == nil && premium
}

func verify(tokenString string, secretKey []byte) (bool, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	})
	if err != nil {
		return false, err
	}
	if !token.Valid {
		return false, common.ErrInvalidToken
	}

	return claims.Premium, nil
}
