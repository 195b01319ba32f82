// Package auth issues and verifies the HS256 access tokens that identify
// the acting party of a milestone.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	"github.com/dmitrijs2005/milestonegate/internal/server/models"
)

// Claims carries the caller's user id and role next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string      `json:"uid"`
	Role   models.Role `json:"role"`
}

func GenerateToken(userID string, role models.Role, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
		Role:   role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry. Expired tokens yield
// common.ErrTokenExpired, anything else unusable yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// ActorFromToken resolves the acting party. Tokens without a user id or
// with an unknown role are rejected.
func ActorFromToken(tokenString string, secretKey []byte) (models.Actor, error) {
	claims, err := ParseToken(tokenString, secretKey)
	if err != nil {
		return models.Actor{}, err
	}
	if claims.UserID == "" {
		return models.Actor{}, fmt.Errorf("%w: missing user id", common.ErrInvalidToken)
	}
	switch claims.Role {
	case models.RoleClient, models.RoleFreelancer:
	default:
		return models.Actor{}, fmt.Errorf("%w: unknown role %q", common.ErrInvalidToken, claims.Role)
	}
	return models.Actor{ID: claims.UserID, Role: claims.Role}, nil
}
