package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rookgm/licensed/internal/models"
)

//go:generate mockgen -source=auth.go -destination=mocks/mock_auth.go -package=mocks

type AuthService interface {
	// Login checks admin password and issues authorization token
	Login(ctx context.Context, password string) (string, error)
}

// AuthHandler represents HTTP handler for admin authentication
type AuthHandler struct {
	svc AuthService
}

// NewAuthHandler creates new AuthHandler instance
func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// LoginAdmin authenticates the administrator
// 200 — администратор успешно аутентифицирован;
// 400 — неверный формат запроса;
// 401 — неверный пароль.
func (ah *AuthHandler) LoginAdmin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		token, err := ah.svc.Login(r.Context(), req.Password)
		if err != nil {
			if errors.Is(err, models.ErrInvalidCredentials) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "auth_token",
			Value:    token,
			Path:     "/",
			HttpOnly: true,
		})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(loginResponse{Token: token}); err != nil {
			return
		}
	}
}
