package middleware

import (
	"context"
	"net/http"
	"strings"

	"prepdeck/internal/service"
)

type contextKey string

const UserIDKey contextKey = "userId"

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireCandidate validates the candidate JWT from the Authorization header,
// or from the token query param for WebSocket upgrades.
func (m *AuthMiddleware) RequireCandidate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, `{"success":false,"error":{"kind":"VALIDATION","message":"missing authorization"}}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateCandidateToken(token)
		if err != nil {
			http.Error(w, `{"success":false,"error":{"kind":"VALIDATION","message":"invalid or expired token"}}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts the authenticated user id from context
func GetUserID(ctx context.Context) string {
	if v := ctx.Value(UserIDKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
