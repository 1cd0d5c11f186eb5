package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/GTDGit/bakery_storefront/internal/models"
)

// Claims are the admin session claims. UpstreamToken is the bearer token
// issued by the bakery API for the same admin.
type Claims struct {
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	UpstreamToken string `json:"ut"`
	jwt.RegisteredClaims
}

// GenerateJWT signs an HS256 token for an admin session.
func GenerateJWT(secret string, ttl time.Duration, session models.AdminSession) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	claims := Claims{
		Email:         session.Email,
		Name:          session.Name,
		UpstreamToken: session.UpstreamToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateJWT parses and verifies a token. Any failure yields ErrInvalidToken.
func ValidateJWT(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Email == "" || claims.UpstreamToken == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Session converts the claims back into an admin session.
func (c *Claims) Session() models.AdminSession {
	return models.AdminSession{Email: c.Email, Name: c.Name, UpstreamToken: c.UpstreamToken}
}
