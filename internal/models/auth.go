package models

import "github.com/golang-jwt/jwt/v4"

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims.
// UserID is the cross-service user identifier issued by the auth service.
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
