package service

import (
	"context"

	"github.com/rookgm/licensed/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// subject placed into admin tokens
const adminSubject = "admin"

// AuthService authenticates the administrator
type AuthService struct {
	passwordHash []byte
	token        TokenService
}

// NewAuthService creates new AuthService instance. The password hash is
// a bcrypt hash supplied via configuration.
func NewAuthService(passwordHash []byte, token TokenService) *AuthService {
	return &AuthService{
		passwordHash: passwordHash,
		token:        token,
	}
}

// Login checks admin password and issues authorization token
func (as *AuthService) Login(_ context.Context, password string) (string, error) {
	if len(as.passwordHash) == 0 {
		return "", models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(as.passwordHash, []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	return as.token.CreateToken(adminSubject)
}
