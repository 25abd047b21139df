package model

import "github.com/golang-jwt/jwt/v5"

// CandidateClaims is the JWT payload issued by the external auth service.
// This service only validates tokens; it never issues them.
type CandidateClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}
