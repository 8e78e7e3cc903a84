package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkoval-dev/peercall/internal/common"
)

// KitClaims carries the fields the call engine expects inside its session
// token, next to the registered expiry claim.
type KitClaims struct {
	jwt.RegisteredClaims
	AppID    int64  `json:"app_id"`
	Room     string `json:"room"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// GenerateKitToken issues an HS256 session token for the call engine.
func GenerateKitToken(appID int64, secretKey []byte, room, userID, userName string, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, KitClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		AppID:    appID,
		Room:     room,
		UserID:   userID,
		UserName: userName,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseKitToken verifies the signature and expiry and returns the claims.
func ParseKitToken(tokenString string, secretKey []byte) (*KitClaims, error) {
	claims := &KitClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, common.ErrorInvalidToken
	}

	return claims, nil
}
