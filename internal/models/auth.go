package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the authenticated caller identity.
type JWTClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
