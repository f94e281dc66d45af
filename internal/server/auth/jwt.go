// Package auth issues and verifies the HS256 access tokens that carry a
// caller's user id and tenant.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/assetcatalog/internal/common"
	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims holds the registered claims plus the caller identity. An empty
// CompanyID is the root tenant.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"uid"`
	CompanyID string `json:"cid,omitempty"`
}

func GenerateToken(userID string, companyID *uuid.UUID, secretKey []byte, validityDuration time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
	}
	if companyID != nil {
		claims.CompanyID = companyID.String()
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ParseToken verifies tokenString and returns the caller scope it names.
// Expired tokens yield common.ErrTokenExpired; every other failure wraps
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (models.Scope, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return models.Scope{}, common.ErrTokenExpired
	}
	if err != nil {
		return models.Scope{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return models.Scope{}, common.ErrInvalidToken
	}

	scope := models.Scope{UserID: claims.UserID}
	if claims.CompanyID != "" {
		id, err := uuid.Parse(claims.CompanyID)
		if err != nil {
			return models.Scope{}, fmt.Errorf("%w: company id: %v", common.ErrInvalidToken, err)
		}
		scope.CompanyID = &id
	}
	return scope, nil
}
