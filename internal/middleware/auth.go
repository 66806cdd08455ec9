package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rookgm/licensed/internal/service"
)

type contextKey int

const (
	contextKeySubject contextKey = iota
)

// tokenFromRequest extracts token from Authorization header or cookie
func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return token
		}
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// Auth gates administrative endpoints behind a valid token
func Auth(ts service.TokenService) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			payload, err := ts.VerifyToken(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), contextKeySubject, payload.Subject)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
