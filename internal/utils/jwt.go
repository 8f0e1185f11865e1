package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateAdminJWT émet le token de session du back-office (24h).
func GenerateAdminJWT(email, secret string) (string, error) {
	claims := jwt.MapClaims{
		"email": email,
		"role":  "admin",
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
