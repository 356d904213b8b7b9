// Package auth issues and verifies the HS256 session tokens carried in the
// portal's session cookie.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/session"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims plus the signed-in user's identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID string      `json:"uid"`
	Role   common.Role `json:"role"`
	Email  string      `json:"email,omitempty"`
	Name   string      `json:"name,omitempty"`
}

// Record is the session record the token vouches for.
func (c *Claims) Record() *session.Record {
	return &session.Record{ID: c.UserID, Email: c.Email, Name: c.Name, Role: c.Role}
}

// GenerateToken signs a token for rec that expires after validityDuration.
func GenerateToken(rec *session.Record, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   rec.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: rec.ID,
		Role:   rec.Role,
		Email:  rec.Email,
		Name:   rec.Name,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies tokenString. Expired tokens yield
// common.ErrTokenExpired; anything else unusable wraps common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if err := claims.Record().Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	return claims, nil
}
