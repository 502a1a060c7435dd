package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

// AdminTokenPayload captures the data available when minting an admin JWT.
type AdminTokenPayload struct {
	Username string
	// SessionID becomes the jti and must exist in the session store for the
	// token to be honoured.
	SessionID string
}

// AdminClaims is the typed JWT issued to back-office users.
type AdminClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
