package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims the auth middleware extracts. The subject
// claim is the owning principal id threaded through every operation.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}
