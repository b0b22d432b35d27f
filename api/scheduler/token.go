package scheduler

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const unsubscribeTokenTTL = 30 * 24 * time.Hour

// NewUnsubscribeToken signs a one-click digest opt-out token for an account
func NewUnsubscribeToken(accountID, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   accountID,
		"scope": "digest-unsubscribe",
		"exp":   time.Now().Add(unsubscribeTokenTTL).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseUnsubscribeToken verifies a digest opt-out token and returns the
// account id it was minted for
func ParseUnsubscribeToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	if scope, _ := claims["scope"].(string); scope != "digest-unsubscribe" {
		return "", fmt.Errorf("unexpected token scope")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("token missing subject")
	}
	return sub, nil
}
