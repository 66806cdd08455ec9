package service

import "github.com/rookgm/licensed/internal/models"

type TokenService interface {
	CreateToken(subject string) (string, error)
	VerifyToken(tokenString string) (*models.TokenPayload, error)
}
