package service

import (
	"context"
	"testing"

	"github.com/rookgm/licensed/internal/auth"
	"github.com/rookgm/licensed/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	token := auth.NewAuthToken([]byte("0123456789abcdef"))
	svc := NewAuthService(hash, token)

	got, err := svc.Login(context.Background(), "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, got)

	payload, err := token.VerifyToken(got)
	require.NoError(t, err)
	assert.Equal(t, "admin", payload.Subject)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	svc := NewAuthService(hash, auth.NewAuthToken([]byte("0123456789abcdef")))

	_, err = svc.Login(context.Background(), "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAuthService_LoginNoHashConfigured(t *testing.T) {
	svc := NewAuthService(nil, auth.NewAuthToken([]byte("0123456789abcdef")))

	_, err := svc.Login(context.Background(), "anything")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}
