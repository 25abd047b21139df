package service

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"prepdeck/internal/model"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService validates candidate tokens issued by the external auth service.
// Token issuance is out of scope here; only the HS256 secret is shared.
type AuthService struct {
	jwtSecret []byte
}

// NewAuthService creates a new auth service.
func NewAuthService(secret string) *AuthService {
	return &AuthService{jwtSecret: []byte(secret)}
}

// ValidateCandidateToken validates a candidate JWT and returns its claims.
func (s *AuthService) ValidateCandidateToken(tokenString string) (*model.CandidateClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.CandidateClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.CandidateClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
