package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rookgm/licensed/internal/models"
)

// default token lifetime
const defaultTokenTTL = 12 * time.Hour

// AuthToken issues and verifies signed authorization tokens
type AuthToken struct {
	key []byte
	ttl time.Duration
}

// NewAuthToken creates new AuthToken instance with signing key
func NewAuthToken(key []byte) *AuthToken {
	return &AuthToken{
		key: key,
		ttl: defaultTokenTTL,
	}
}

// CreateToken issues token for subject
func (at *AuthToken) CreateToken(subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(at.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(at.key)
}

// VerifyToken parses and validates token string
func (at *AuthToken) VerifyToken(tokenString string) (*models.TokenPayload, error) {
	claims := jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return at.key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	payload := models.TokenPayload{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		payload.ExpiresAt = claims.ExpiresAt.Time
	}

	return &payload, nil
}
